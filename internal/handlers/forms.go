package handlers

import (
	"fmt"
	"strings"

	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/services"
	"github.com/yukikurage/todo-list/internal/tagset"
)

// TaskForm is the create and edit form of a task.
type TaskForm struct {
	Description string `form:"description" binding:"required,max=64"`
	Priority    int    `form:"priority" binding:"required,oneof=1 2 3"`
	Tags        string `form:"tags"`
}

func newTaskForm() TaskForm {
	return TaskForm{Priority: int(models.PriorityMedium)}
}

func taskFormFrom(task *models.Task) TaskForm {
	return TaskForm{
		Description: task.Description,
		Priority:    int(task.Priority),
		Tags:        tagset.Join(task.TagNames()),
	}
}

func (f TaskForm) priority() models.Priority {
	return models.Priority(f.Priority)
}

func (f TaskForm) tagNames() []string {
	return tagset.Parse(f.Tags)
}

// checkbox is a form boolean that also accepts the "on" browsers submit for
// a ticked box without a value attribute.
type checkbox bool

// UnmarshalParam implements binding.BindUnmarshaler.
func (b *checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "on", "true", "1", "yes":
		*b = true
	case "", "off", "false", "0", "no":
		*b = false
	default:
		return fmt.Errorf("invalid checkbox value %q", param)
	}
	return nil
}

// ExportForm selects the priorities included in an export. Unticked
// checkboxes are absent from the request.
type ExportForm struct {
	High   checkbox `form:"prio_high"`
	Medium checkbox `form:"prio_med"`
	Low    checkbox `form:"prio_low"`
}

func (f ExportForm) selection() services.PrioritySelection {
	return services.PrioritySelection{High: bool(f.High), Medium: bool(f.Medium), Low: bool(f.Low)}
}

// SignupForm registers a new account.
type SignupForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// SuggestRequest asks the assistant for task suggestions.
type SuggestRequest struct {
	Text string `json:"text" binding:"required"`
}
