package repository

import (
	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/database"
	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/utils"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task together with its tag links
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByOwner finds a task by ID that belongs to ownerID
func (r *GormTaskRepository) FindByOwner(id, ownerID uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Where("owner_id = ?", ownerID)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	// OR over zero priorities selects nothing
	if filter.FilterByPriority && len(filter.Priorities) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("tasks.owner_id = ?", filter.OwnerID)

	if filter.TagID != nil {
		tagSubQuery := r.db.Table("task_tags").
			Select("1").
			Where("task_tags.task_id = tasks.id").
			Where("task_tags.tag_id = ?", *filter.TagID)
		query = query.Where("EXISTS (?)", tagSubQuery)
	}
	if filter.FilterByPriority {
		query = query.Where("tasks.priority IN ?", filter.Priorities)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Scopes(database.NewestFirst)
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Tags").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateWithTags saves the scalar fields of a task and replaces its tag set
// in one transaction
func (r *GormTaskRepository) UpdateWithTags(task *models.Task, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Owner").Save(task).Error; err != nil {
			return err
		}

		association := tx.Model(task).Association("Tags")
		if len(tags) == 0 {
			return association.Clear()
		}
		return association.Replace(tags)
	})
}

// MarkCompleted sets is_completed on a task without touching other fields.
// Existence is checked by the caller; MySQL reports zero affected rows when
// the task is already completed.
func (r *GormTaskRepository) MarkCompleted(id uint64) error {
	return r.db.Model(&models.Task{ID: id}).Update("is_completed", true).Error
}

// Delete permanently deletes a task and its tag links
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
