package persistence

import (
	"context"

	"github.com/catalogadmin/backend/internal/domain/media"
	"gorm.io/gorm"
)

// Ensure GormMediaRepository implements media.Repository
var _ media.Repository = (*GormMediaRepository)(nil)

// GormMediaRepository implements media.Repository using GORM
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository
func NewGormMediaRepository(db *gorm.DB) *GormMediaRepository {
	return &GormMediaRepository{db: db}
}

// List returns every media item. Fresh installs have no media table, which
// yields an empty list.
func (r *GormMediaRepository) List(ctx context.Context) ([]media.Item, error) {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(&media.Item{}) {
		return []media.Item{}, nil
	}

	var items []media.Item
	if err := db.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteByURLs removes the items with the given URLs
func (r *GormMediaRepository) DeleteByURLs(ctx context.Context, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("url IN ?", urls).
		Delete(&media.Item{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
