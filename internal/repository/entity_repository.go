//go:generate mockery --name EntityRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type EntityRepository interface {
	Create(ctx context.Context, db *gorm.DB, entity *model.Entity) error
	FindByID(ctx context.Context, db *gorm.DB, entityID uint) (*model.Entity, error)
	FindByURL(ctx context.Context, db *gorm.DB, url string) (*model.Entity, error)
	SearchByURL(ctx context.Context, db *gorm.DB, url string) ([]model.Entity, error)
}

type gormEntityRepository struct{}

func NewGormEntityRepository() EntityRepository {
	return &gormEntityRepository{}
}

func (r *gormEntityRepository) Create(ctx context.Context, db *gorm.DB, entity *model.Entity) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(entity)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" {
			logger.Warn("Duplicate key error on create entity", "error", result.Error, "url", entity.URL)
			return model.ErrConflict
		}
		logger.Error("Error creating entity in DB", "error", result.Error, "url", entity.URL)
		return fmt.Errorf("gormEntityRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormEntityRepository) FindByID(ctx context.Context, db *gorm.DB, entityID uint) (*model.Entity, error) {
	logger := middleware.GetLogger(ctx)
	var entity model.Entity

	result := db.WithContext(ctx).Where("id = ?", entityID).First(&entity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding entity by ID in DB", "error", result.Error, "entity_id", entityID)
		return nil, fmt.Errorf("gormEntityRepository.FindByID: %w", result.Error)
	}
	return &entity, nil
}

func (r *gormEntityRepository) FindByURL(ctx context.Context, db *gorm.DB, url string) (*model.Entity, error) {
	logger := middleware.GetLogger(ctx)
	var entity model.Entity

	result := db.WithContext(ctx).Where("url = ?", url).First(&entity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("Entity not found by URL", "url", url)
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding entity by URL in DB", "error", result.Error, "url", url)
		return nil, fmt.Errorf("gormEntityRepository.FindByURL: %w", result.Error)
	}
	return &entity, nil
}

// SearchByURL は保存済み正規URLに対する部分一致検索です。順序は挿入順。
func (r *gormEntityRepository) SearchByURL(ctx context.Context, db *gorm.DB, url string) ([]model.Entity, error) {
	logger := middleware.GetLogger(ctx)
	var entities []model.Entity

	result := db.WithContext(ctx).Where("url LIKE ?", "%"+url+"%").Order("id").Find(&entities)
	if result.Error != nil {
		logger.Error("Error searching entities by URL in DB", "error", result.Error, "url", url)
		return nil, fmt.Errorf("gormEntityRepository.SearchByURL: %w", result.Error)
	}
	return entities, nil
}
