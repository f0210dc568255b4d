package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/constants"
	"github.com/yukikurage/todo-list/internal/mailer"
	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/repository"
	"github.com/yukikurage/todo-list/internal/tagset"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTagNotFound          = errors.New("tag not found")
	ErrDescriptionRequired  = errors.New("description is required")
	ErrDescriptionTooLong   = fmt.Errorf("description must be at most %d characters", constants.MaxDescriptionLength)
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrExportDeliveryFailed = errors.New("failed to deliver export email")
)

// TaskService handles task business logic. Every operation receives the
// acting user explicitly.
type TaskService struct {
	taskRepo  repository.TaskRepository
	tagRepo   repository.TagRepository
	userRepo  repository.UserRepository
	mailer    mailer.Mailer
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		tagRepo:   tagRepo,
		userRepo:  userRepo,
		mailer:    m,
		aiService: aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID  uint64
	TagSlug  string
	Page     int
	PageSize int
}

// TaskList is a page of tasks together with the distinct tags they use.
type TaskList struct {
	Tasks   []models.Task
	Tag     *models.Tag
	AllTags []models.Tag
	Total   int64
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     uint64
	Description string
	Priority    models.Priority
	Tags        []string
}

// UpdateTaskInput represents input for editing a task
type UpdateTaskInput struct {
	Description string
	Priority    models.Priority
	Tags        []string
}

// ExportInput represents an export request
type ExportInput struct {
	UserID    uint64
	Selection PrioritySelection
}

// ExportResult describes a rendered export.
type ExportResult struct {
	Recipient string
	Body      string
	TaskCount int
}

// ListTasks returns the owner's tasks, optionally restricted to a tag, with
// the distinct tags used by the listed tasks.
func (s *TaskService) ListTasks(input ListTasksInput) (*TaskList, error) {
	filter := repository.TaskFilter{
		OwnerID:  input.OwnerID,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	var tag *models.Tag
	if input.TagSlug != "" {
		found, err := s.tagRepo.FindBySlug(input.TagSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTagNotFound
			}
			return nil, fmt.Errorf("failed to find tag: %w", err)
		}
		tag = found
		filter.TagID = &found.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskList{
		Tasks:   tasks,
		Tag:     tag,
		AllTags: tagset.DistinctTags(tasks),
		Total:   total,
	}, nil
}

// GetTask returns a task with its tags regardless of owner
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Tags")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// GetOwnedTask returns a task with its tags if it belongs to ownerID.
// Tasks of other users are reported as not found.
func (s *TaskService) GetOwnedTask(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByOwner(taskID, ownerID, "Tags")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates the input and creates a task owned by input.OwnerID
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	description, err := validateTaskFields(input.Description, input.Priority)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.FindOrCreate(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}

	task := &models.Task{
		Description: description,
		Priority:    input.Priority,
		OwnerID:     input.OwnerID,
		Tags:        tags,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask replaces the description, priority and tags of an owned task
func (s *TaskService) UpdateTask(taskID, ownerID uint64, input UpdateTaskInput) (*models.Task, error) {
	description, err := validateTaskFields(input.Description, input.Priority)
	if err != nil {
		return nil, err
	}

	task, err := s.GetOwnedTask(taskID, ownerID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.FindOrCreate(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}

	task.Description = description
	task.Priority = input.Priority

	if err := s.taskRepo.UpdateWithTags(task, tags); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetOwnedTask(taskID, ownerID)
}

// CompleteTask marks an owned task as completed
func (s *TaskService) CompleteTask(taskID, ownerID uint64) (*models.Task, error) {
	if _, err := s.GetOwnedTask(taskID, ownerID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.MarkCompleted(taskID); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	return s.GetOwnedTask(taskID, ownerID)
}

// DeleteTask permanently deletes an owned task
func (s *TaskService) DeleteTask(taskID, ownerID uint64) error {
	if _, err := s.GetOwnedTask(taskID, ownerID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// RenderExport builds the export body for the user's tasks matching the
// selected priorities, newest first.
func (s *TaskService) RenderExport(input ExportInput) (*ExportResult, error) {
	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tasks, _, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:          user.ID,
		FilterByPriority: true,
		Priorities:       input.Selection.Priorities(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &ExportResult{
		Recipient: user.Email,
		Body:      BuildExportBody(tasks),
		TaskCount: len(tasks),
	}, nil
}

// Export renders the export and mails it to the user's registered address.
// Delivery is attempted once; a failure is reported as
// ErrExportDeliveryFailed together with the rendered result.
func (s *TaskService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	result, err := s.RenderExport(input)
	if err != nil {
		return nil, err
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      result.Recipient,
		Subject: ExportSubject,
		Body:    result.Body,
	})
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrExportDeliveryFailed, err)
	}

	return result, nil
}

// validateTaskFields returns the trimmed description or a validation error
func validateTaskFields(description string, priority models.Priority) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	if !priority.Valid() {
		return "", ErrInvalidPriority
	}
	return description, nil
}
