package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/todo-list/internal/models"
)

// newStubAIService returns an AIService whose chat completions answer with content.
func newStubAIService(t *testing.T, content string) *AIService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  openai.GPT4o,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: content,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestSuggestTasks_NotConfigured(t *testing.T) {
	svc := NewTaskService(nil, nil, nil, nil, nil)

	_, err := svc.SuggestTasks(context.Background(), "buy milk")
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func TestSuggestTasks_ValidatesOutput(t *testing.T) {
	content := "```json\n" + `[
		{"description": "Buy milk", "priority": "high", "tags": ["home", "errands", "home"]},
		{"description": "   ", "priority": "Low", "tags": []},
		{"description": "Call the bank", "priority": "urgent", "tags": null}
	]` + "\n```"
	svc := NewTaskService(nil, nil, nil, nil, newStubAIService(t, content))

	suggestions, err := svc.SuggestTasks(context.Background(), "buy milk and call the bank")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, SuggestedTask{
		Description: "Buy milk",
		Priority:    models.PriorityHigh,
		Tags:        []string{"errands", "home"},
	}, suggestions[0])
	assert.Equal(t, models.PriorityMedium, suggestions[1].Priority)
	assert.Empty(t, suggestions[1].Tags)
}

func TestSuggestTasks_EmptyOutput(t *testing.T) {
	svc := NewTaskService(nil, nil, nil, nil, newStubAIService(t, "[]"))

	_, err := svc.SuggestTasks(context.Background(), "nothing to do")
	assert.ErrorIs(t, err, ErrAINoTasksGenerated)
}

func TestSuggestTasks_NoValidTasks(t *testing.T) {
	svc := NewTaskService(nil, nil, nil, nil, newStubAIService(t, `[{"description": "", "priority": "Low"}]`))

	_, err := svc.SuggestTasks(context.Background(), "???")
	assert.ErrorIs(t, err, ErrAINoValidTasks)
}

func TestGenerateTasksFromText_InvalidJSON(t *testing.T) {
	ai := newStubAIService(t, "not json")

	_, err := ai.GenerateTasksFromText(context.Background(), "text")
	assert.Error(t, err)
}
