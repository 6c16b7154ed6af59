//go:generate mockery --name FeedbackRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"time"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, db *gorm.DB, feedback *model.Feedback) error
	ListByEntityID(ctx context.Context, db *gorm.DB, entityID uint, query *model.ListFeedbackQuery) ([]model.FeedbackWithUsername, error)
	DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error
}

type gormFeedbackRepository struct{}

func NewGormFeedbackRepository() FeedbackRepository {
	return &gormFeedbackRepository{}
}

func (r *gormFeedbackRepository) Create(ctx context.Context, db *gorm.DB, feedback *model.Feedback) error {
	logger := middleware.GetLogger(ctx)

	// created_at はGORMがINSERT時に採番する
	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		logger.Error("Error creating feedback in DB", "error", err, "entity_id", feedback.EntityID)
		return fmt.Errorf("gormFeedbackRepository.Create: %w", err)
	}
	return nil
}

// ListByEntityID はエンティティ宛のフィードバックを投稿者名付きで返します。
// created_at の同値はID (挿入順) でタイブレークする。
func (r *gormFeedbackRepository) ListByEntityID(ctx context.Context, db *gorm.DB, entityID uint, query *model.ListFeedbackQuery) ([]model.FeedbackWithUsername, error) {
	logger := middleware.GetLogger(ctx)
	var feedbacks []model.FeedbackWithUsername

	tx := db.WithContext(ctx).
		Table("feedbacks").
		Select("feedbacks.id, feedbacks.text, feedbacks.created_at, feedbacks.user_id, feedbacks.entity_id, users.username").
		Joins("JOIN users ON users.id = feedbacks.user_id").
		Where("feedbacks.entity_id = ?", entityID)

	if query.FilterLastDays > 0 {
		since := time.Now().UTC().AddDate(0, 0, -query.FilterLastDays)
		tx = tx.Where("feedbacks.created_at >= ?", since)
	}

	if query.SortOrder == "desc" {
		tx = tx.Order("feedbacks.created_at DESC").Order("feedbacks.id DESC")
	} else {
		tx = tx.Order("feedbacks.created_at ASC").Order("feedbacks.id ASC")
	}

	if err := tx.Scan(&feedbacks).Error; err != nil {
		logger.Error("Error listing feedbacks in DB", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("gormFeedbackRepository.ListByEntityID: %w", err)
	}
	return feedbacks, nil
}

func (r *gormFeedbackRepository) DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Feedback{})
	if result.Error != nil {
		logger.Error("Error deleting feedbacks by user in DB", "error", result.Error, "user_id", userID)
		return fmt.Errorf("gormFeedbackRepository.DeleteByUserID: %w", result.Error)
	}
	return nil
}
