package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/todo-list/internal/constants"
	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/tagset"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
	ErrAITooManyTasks         = fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
)

type AIService struct {
	client *openai.Client
	model  string
}

// GeneratedTask is a task as proposed by the model.
type GeneratedTask struct {
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

// SuggestedTask is a validated suggestion ready to prefill the create form.
type SuggestedTask struct {
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Tags        []string        `json:"tags"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig creates an AIService with a custom client configuration.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// GenerateTasksFromText asks the model to extract to-do items from text
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You are a to-do list assistant. Extract concrete tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of tasks in this format:
[
  {
    "description": "short task description, at most %d characters",
    "priority": "High, Medium or Low",
    "tags": ["short", "labels"]
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- Use Medium when the priority is not clear from the text
- Return JSON only, without any explanation`, currentTime, text, constants.MaxDescriptionLength)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// SuggestTasks turns free text into validated task suggestions
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, ErrAITooManyTasks
	}

	suggestions := make([]SuggestedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		priority, ok := models.ParsePriority(aiTask.Priority)
		if !ok {
			priority = models.PriorityMedium
		}

		description, err := validateTaskFields(aiTask.Description, priority)
		if err != nil {
			continue
		}

		suggestions = append(suggestions, SuggestedTask{
			Description: description,
			Priority:    priority,
			Tags:        tagset.Parse(strings.Join(aiTask.Tags, ",")),
		})
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoValidTasks
	}

	return suggestions, nil
}

// stripCodeFence removes a surrounding ``` block the model sometimes adds.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
