package dto

import (
	"time"

	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/services"
	"github.com/yukikurage/todo-list/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64          `json:"id"`
	Description   string          `json:"description"`
	IsCompleted   bool            `json:"is_completed"`
	Priority      models.Priority `json:"priority"`
	PriorityLabel string          `json:"priority_label"`
	Tags          []TagDTO        `json:"tags"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks with the distinct
// tags used by the listed tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Tags       []TagDTO                 `json:"tags"`
	Pagination utils.PaginationResponse `json:"pagination"`
	TotalPages int                      `json:"total_pages"`
}

// SuggestionResponse wraps AI generated task suggestions
type SuggestionResponse struct {
	Tasks []services.SuggestedTask `json:"tasks"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
	}
}

// ToTagDTOs converts tags, never returning nil
func ToTagDTOs(tags []models.Tag) []TagDTO {
	out := make([]TagDTO, len(tags))
	for i, t := range tags {
		out[i] = TagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug}
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		Description:   task.Description,
		IsCompleted:   task.IsCompleted,
		Priority:      task.Priority,
		PriorityLabel: task.Priority.Label(),
		Tags:          ToTagDTOs(task.Tags),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskListResponse converts a service task list to TaskListResponse
func ToTaskListResponse(list *services.TaskList, params utils.PaginationParams) TaskListResponse {
	items := make([]TaskDTO, len(list.Tasks))
	for i, task := range list.Tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		Tags:  ToTagDTOs(list.AllTags),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: list.Total,
		},
		TotalPages: params.TotalPages(list.Total),
	}
}
