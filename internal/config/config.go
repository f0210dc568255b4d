package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`

	DBDriver   string `yaml:"db_driver" toml:"db_driver" env:"DB_DRIVER" env-default:"mysql"`
	DBHost     string `yaml:"db_host" toml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     string `yaml:"db_port" toml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBUser     string `yaml:"db_user" toml:"db_user" env:"DB_USER" env-default:"todouser"`
	DBPassword string `yaml:"db_password" toml:"db_password" env:"DB_PASSWORD" env-default:"todopassword"`
	DBName     string `yaml:"db_name" toml:"db_name" env:"DB_NAME" env-default:"todo_list"`

	// Leave RedisHost empty to keep sessions in signed cookies.
	RedisHost     string `yaml:"redis_host" toml:"redis_host" env:"REDIS_HOST"`
	RedisPort     string `yaml:"redis_port" toml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	SessionSecret string `yaml:"session_secret" toml:"session_secret" env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`

	GinMode  string `yaml:"gin_mode" toml:"gin_mode" env:"GIN_MODE" env-default:"debug"`
	LogLevel string `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	SMTPHost      string `yaml:"smtp_host" toml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort      int    `yaml:"smtp_port" toml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUsername  string `yaml:"smtp_username" toml:"smtp_username" env:"SMTP_USERNAME"`
	SMTPPassword  string `yaml:"smtp_password" toml:"smtp_password" env:"SMTP_PASSWORD"`
	EmailHostUser string `yaml:"email_host_user" toml:"email_host_user" env:"EMAIL_HOST_USER" env-default:"noreply@localhost"`

	OpenAIAPIKey string `yaml:"openai_api_key" toml:"openai_api_key" env:"OPENAI_API_KEY"`
}

// Load reads the configuration from the file named by CONFIG_PATH, falling
// back to the environment when the variable is unset or the file is missing.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
		return &cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	return &cfg, cfg.validate()
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}
