package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/tagset"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// FindBySlug finds a tag by its slug
func (r *GormTagRepository) FindBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindOrCreate returns the tags with the given names, creating missing ones.
// Names are compared case-insensitively, so the result is the same whatever
// collation the database uses. The result follows the order of names, with
// names resolving to the same tag reported once.
func (r *GormTagRepository) FindOrCreate(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[uint64]struct{}, len(names))

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			var tag models.Tag
			err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&tag).Error
			if err == nil {
				if _, dup := seen[tag.ID]; !dup {
					seen[tag.ID] = struct{}{}
					tags = append(tags, tag)
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			slug, err := uniqueSlug(tx, name)
			if err != nil {
				return err
			}

			tag = models.Tag{Name: name, Slug: slug}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("failed to create tag %q: %w", name, err)
			}
			seen[tag.ID] = struct{}{}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// uniqueSlug slugifies name and appends a counter while the slug is taken.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := tagset.Slugify(name)
	if base == "" {
		base = "tag"
	}

	slug := base
	for i := 1; ; i++ {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s_%d", base, i)
	}
}
