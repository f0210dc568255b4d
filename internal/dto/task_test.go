package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/services"
	"github.com/yukikurage/todo-list/internal/utils"
)

func TestToTaskDTO(t *testing.T) {
	now := time.Now()
	task := models.Task{
		ID:          4,
		Description: "Call mom",
		IsCompleted: true,
		Priority:    models.PriorityLow,
		Tags:        []models.Tag{{ID: 1, Name: "family", Slug: "family"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	got := ToTaskDTO(task)
	assert.Equal(t, uint64(4), got.ID)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "Low", got.PriorityLabel)
	assert.Equal(t, []TagDTO{{ID: 1, Name: "family", Slug: "family"}}, got.Tags)
}

func TestToTaskDTO_NoTagsIsEmptySlice(t *testing.T) {
	got := ToTaskDTO(models.Task{Priority: models.PriorityHigh})
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func TestToTaskListResponse(t *testing.T) {
	list := &services.TaskList{
		Tasks:   []models.Task{{ID: 1, Priority: models.PriorityHigh}, {ID: 2, Priority: models.PriorityMedium}},
		AllTags: []models.Tag{{ID: 9, Name: "work", Slug: "work"}},
		Total:   5,
	}

	got := ToTaskListResponse(list, utils.NewPaginationParams(1, 2))
	assert.Len(t, got.Tasks, 2)
	assert.Equal(t, "work", got.Tags[0].Slug)
	assert.Equal(t, int64(5), got.Pagination.Total)
	assert.Equal(t, 3, got.TotalPages)
}
