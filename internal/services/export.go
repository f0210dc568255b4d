package services

import (
	"strings"

	"github.com/yukikurage/todo-list/internal/models"
)

const (
	ExportSubject = "Tasks"
	ExportHeader  = "Your tasks and priorities:\n"
)

// PrioritySelection holds the priority checkboxes of the export form.
type PrioritySelection struct {
	High   bool
	Medium bool
	Low    bool
}

// AllPriorities selects every priority level.
func AllPriorities() PrioritySelection {
	return PrioritySelection{High: true, Medium: true, Low: true}
}

// Priorities returns the selected levels. A task matches the selection when
// its priority is in this set, so an empty selection matches nothing.
func (s PrioritySelection) Priorities() []models.Priority {
	priorities := make([]models.Priority, 0, 3)
	if s.High {
		priorities = append(priorities, models.PriorityHigh)
	}
	if s.Medium {
		priorities = append(priorities, models.PriorityMedium)
	}
	if s.Low {
		priorities = append(priorities, models.PriorityLow)
	}
	return priorities
}

// BuildExportBody renders the plain-text export: the header followed by one
// "[x] description (Priority)" line per task, in the given order.
func BuildExportBody(tasks []models.Task) string {
	var b strings.Builder
	b.WriteString(ExportHeader)

	for _, t := range tasks {
		if t.IsCompleted {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
		b.WriteString(t.Description)
		b.WriteString(" (")
		b.WriteString(t.Priority.Label())
		b.WriteString(")\n")
	}

	return b.String()
}
