package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/todo-list/internal/config"
)

func TestNew_WithoutSMTPUsesLogMailer(t *testing.T) {
	m, err := New(&config.Config{EmailHostUser: "tasks@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
}

func TestNew_WithSMTP(t *testing.T) {
	m, err := New(&config.Config{
		SMTPHost:      "smtp.example.com",
		SMTPPort:      2525,
		SMTPUsername:  "user",
		SMTPPassword:  "secret",
		EmailHostUser: "tasks@example.com",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer("tasks@example.com", zerolog.New(&buf))

	err := m.Send(context.Background(), Message{
		To:      "user@example.com",
		Subject: "Tasks",
		Body:    "Your tasks and priorities:\n",
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user@example.com", entry["to"])
	assert.Equal(t, "Tasks", entry["subject"])
	assert.Equal(t, "Your tasks and priorities:\n", entry["body"])
}

func TestLogMailer_SendRejectsBadRecipient(t *testing.T) {
	m := NewLogMailer("tasks@example.com", zerolog.Nop())

	err := m.Send(context.Background(), Message{To: "not an address", Subject: "Tasks"})
	assert.Error(t, err)
}
