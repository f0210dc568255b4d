package repository

import (
	"github.com/yukikurage/todo-list/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task together with its tag links
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByOwner finds a task by ID that belongs to ownerID
	FindByOwner(id, ownerID uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, newest first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateWithTags saves the scalar fields and the tag set of a task atomically
	UpdateWithTags(task *models.Task, tags []models.Tag) error

	// MarkCompleted sets is_completed on a task without touching other fields
	MarkCompleted(id uint64) error

	// Delete permanently deletes a task and its tag links
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID uint64
	TagID   *uint64

	// When FilterByPriority is set only tasks whose priority is in
	// Priorities match; an empty Priorities then matches nothing.
	FilterByPriority bool
	Priorities       []models.Priority

	Page     int
	PageSize int
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// FindBySlug finds a tag by its slug
	FindBySlug(slug string) (*models.Tag, error)

	// FindOrCreate returns the tags with the given names, creating missing
	// ones. Names are matched case-insensitively.
	FindOrCreate(names []string) ([]models.Tag, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
