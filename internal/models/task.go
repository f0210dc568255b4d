package models

import (
	"strings"
	"time"
)

type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Label returns the human readable name of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Description string    `gorm:"type:varchar(64);not null" json:"description"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	Priority    Priority  `gorm:"not null;default:2" json:"priority"`
	OwnerID     uint64    `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner User  `gorm:"foreignKey:OwnerID" json:"-"`
	Tags  []Tag `gorm:"many2many:task_tags;constraint:OnDelete:CASCADE" json:"tags"`
}

// TagNames returns the names of the preloaded tags.
func (t Task) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}

// ParsePriority maps a label such as "High" (case-insensitive) to a Priority.
func ParsePriority(label string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(label), p.Label()) {
			return p, true
		}
	}
	return 0, false
}
