package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yukikurage/todo-list/internal/constants"
	"github.com/yukikurage/todo-list/internal/dto"
	apierrors "github.com/yukikurage/todo-list/internal/errors"
	"github.com/yukikurage/todo-list/internal/middleware"
	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/services"
	"github.com/yukikurage/todo-list/internal/utils"
)

// ListPath is the task list every form redirects back to.
const ListPath = "/list/"

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// Index renders the start page
func (h *TaskHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", nil)
}

// ListTasks renders the current user's tasks, optionally restricted to the
// tag named by the :slug parameter, together with the tags they use
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	list, err := h.taskService.ListTasks(services.ListTasksInput{
		OwnerID:  userID,
		TagSlug:  c.Param("slug"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	render(c, http.StatusOK, "list.html", gin.H{
		"Title":      "My tasks",
		"Tasks":      list.Tasks,
		"Tag":        list.Tag,
		"AllTags":    list.AllTags,
		"Pagination": newPager(params, list.Total),
	})
}

// NewTaskForm renders an empty create form
func (h *TaskHandler) NewTaskForm(c *gin.Context) {
	h.renderTaskForm(c, http.StatusOK, "create.html", nil, newTaskForm(), nil)
}

// CreateTask creates a task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var form TaskForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectTaskForm(c, "create.html", nil, form, fieldErrors(err))
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		OwnerID:     userID,
		Description: form.Description,
		Priority:    form.priority(),
		Tags:        form.tagNames(),
	})
	if err != nil {
		if errs, ok := taskFieldErrors(err); ok {
			h.rejectTaskForm(c, "create.html", nil, form, errs)
			return
		}
		h.respondTaskError(c, err)
		return
	}

	log.Info().Uint64("task_id", task.ID).Uint64("user_id", userID).Msg("task created")
	if apierrors.WantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
		return
	}
	redirect(c, ListPath)
}

// CompleteTask marks the task as completed and answers with a plain "OK"
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if _, err := h.taskService.CompleteTask(task.ID, task.OwnerID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.String(http.StatusOK, "OK")
}

// DeleteTask deletes the task and returns to the list with a notice
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(task.ID, task.OwnerID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	addFlash(c, constants.FlashSuccess, fmt.Sprintf("Task #%d deleted", task.ID))
	redirect(c, ListPath)
}

// GetTask renders the details page of any task
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := middleware.ParseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	render(c, http.StatusOK, "details.html", gin.H{
		"Title":   fmt.Sprintf("Task #%d", task.ID),
		"Task":    task,
		"IsOwner": userID != 0 && userID == task.OwnerID,
	})
}

// EditTaskForm renders the edit form prefilled with the task
func (h *TaskHandler) EditTaskForm(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	h.renderTaskForm(c, http.StatusOK, "edit.html", task, taskFormFrom(task), nil)
}

// UpdateTask saves the edit form
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var form TaskForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectTaskForm(c, "edit.html", task, form, fieldErrors(err))
		return
	}

	_, err := h.taskService.UpdateTask(task.ID, task.OwnerID, services.UpdateTaskInput{
		Description: form.Description,
		Priority:    form.priority(),
		Tags:        form.tagNames(),
	})
	if err != nil {
		if errs, ok := taskFieldErrors(err); ok {
			h.rejectTaskForm(c, "edit.html", task, form, errs)
			return
		}
		h.respondTaskError(c, err)
		return
	}

	redirect(c, ListPath)
}

// ExportForm renders the priority selection for an export
func (h *TaskHandler) ExportForm(c *gin.Context) {
	render(c, http.StatusOK, "export.html", gin.H{
		"Title": "Export tasks",
		"Form":  ExportForm{},
	})
}

// ExportTasks mails the selected tasks to the current user. The outcome is
// reported as a flash message on the task list.
func (h *TaskHandler) ExportTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var form ExportForm
	if err := c.ShouldBind(&form); err != nil {
		addFlash(c, constants.FlashError, "Something went wrong, please try again")
		redirect(c, ListPath)
		return
	}

	result, err := h.taskService.Export(c.Request.Context(), services.ExportInput{
		UserID:    userID,
		Selection: form.selection(),
	})
	switch {
	case err == nil:
		log.Info().Uint64("user_id", userID).Int("tasks", result.TaskCount).Msg("tasks exported")
		addFlash(c, constants.FlashSuccess, fmt.Sprintf("Tasks were sent to %s", result.Recipient))
	case errors.Is(err, services.ErrExportDeliveryFailed):
		log.Warn().Err(err).Uint64("user_id", userID).Msg("export delivery failed")
		addFlash(c, constants.FlashError, fmt.Sprintf("Could not send tasks to %s, please try again later", result.Recipient))
	default:
		log.Error().Err(err).Uint64("user_id", userID).Msg("export failed")
		addFlash(c, constants.FlashError, "Something went wrong, please try again")
	}

	redirect(c, ListPath)
}

// APIListTasks returns the current user's tasks as JSON
func (h *TaskHandler) APIListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	list, err := h.taskService.ListTasks(services.ListTasksInput{
		OwnerID:  userID,
		TagSlug:  c.Query("tag"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(list, params))
}

// SuggestTasks asks the assistant to turn free text into task suggestions
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", fieldErrors(err))
		return
	}

	suggestions, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		case errors.Is(err, services.ErrAINoTasksGenerated),
			errors.Is(err, services.ErrAINoValidTasks),
			errors.Is(err, services.ErrAITooManyTasks):
			apierrors.RespondWithError(c, http.StatusUnprocessableEntity,
				apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, err.Error()))
		default:
			log.Error().Err(err).Msg("task suggestion failed")
			apierrors.InternalError(c, "Failed to generate tasks")
		}
		return
	}

	c.JSON(http.StatusOK, dto.SuggestionResponse{Tasks: suggestions})
}

func (h *TaskHandler) renderTaskForm(c *gin.Context, status int, page string, task *models.Task, form TaskForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	title := "New task"
	if task != nil {
		title = fmt.Sprintf("Edit task #%d", task.ID)
	}
	render(c, status, page, gin.H{
		"Title":      title,
		"Task":       task,
		"Form":       form,
		"Errors":     errs,
		"Priorities": models.Priorities,
	})
}

// rejectTaskForm answers an invalid task form. JSON clients get the field
// errors as details, browsers get the form back.
func (h *TaskHandler) rejectTaskForm(c *gin.Context, page string, task *models.Task, form TaskForm, errs map[string]string) {
	if apierrors.WantsJSON(c) {
		apierrors.BadRequestWithDetails(c, "Invalid task", errs)
		return
	}
	h.renderTaskForm(c, http.StatusBadRequest, page, task, form, errs)
}

// taskFieldErrors maps service validation errors onto form fields.
func taskFieldErrors(err error) (map[string]string, bool) {
	switch {
	case errors.Is(err, services.ErrDescriptionRequired):
		return map[string]string{"Description": "This field is required."}, true
	case errors.Is(err, services.ErrDescriptionTooLong):
		return map[string]string{"Description": err.Error()}, true
	case errors.Is(err, services.ErrInvalidPriority):
		return map[string]string{"Priority": "Select a valid choice."}, true
	default:
		return nil, false
	}
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTagNotFound):
		apierrors.NotFound(c, "Tag not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthorized(c, "")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("task request failed")
		apierrors.InternalError(c, "")
	}
}
