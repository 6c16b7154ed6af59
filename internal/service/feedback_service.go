package service

import (
	"context"
	"errors"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/repository"

	"gorm.io/gorm"
)

type FeedbackService interface {
	AddFeedback(ctx context.Context, entityID, userID uint, req *model.CreateFeedbackRequest) (*model.Feedback, error)
	ListFeedback(ctx context.Context, entityID uint, query *model.ListFeedbackQuery) ([]model.FeedbackWithUsername, error)
}

type feedbackService struct {
	db           *gorm.DB
	feedbackRepo repository.FeedbackRepository
	entityRepo   repository.EntityRepository
}

func NewFeedbackService(db *gorm.DB, feedbackRepo repository.FeedbackRepository, entityRepo repository.EntityRepository) FeedbackService {
	return &feedbackService{
		db:           db,
		feedbackRepo: feedbackRepo,
		entityRepo:   entityRepo,
	}
}

// AddFeedback は認証済みユーザーのフィードバックを追加します。
// 対象エンティティの存在確認をしてから追加する。タイムスタンプはINSERT時に採番。
func (s *feedbackService) AddFeedback(ctx context.Context, entityID, userID uint, req *model.CreateFeedbackRequest) (*model.Feedback, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Feedback
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// エンティティの存在チェック
		if _, err := s.entityRepo.FindByID(ctx, tx, entityID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Feedback rejected: entity not found", "entity_id", entityID)
				return model.NewAppError("ENTITY_NOT_FOUND", "Entity not found.", "", model.ErrNotFound)
			}
			logger.Error("Failed to check entity existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
		}

		feedback := &model.Feedback{
			Text:     req.Text,
			UserID:   userID,
			EntityID: entityID,
		}
		if err := s.feedbackRepo.Create(ctx, tx, feedback); err != nil {
			logger.Error("Failed to create feedback in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to create feedback.", "", err)
		}
		created = feedback
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Feedback created", "feedback_id", created.ID, "entity_id", entityID, "user_id", userID)
	return created, nil
}

// ListFeedback はエンティティ宛のフィードバックを投稿者名付きで返します。
// sort_order は asc (デフォルト) / desc、filter_last_days が正なら直近N日に絞る。
func (s *feedbackService) ListFeedback(ctx context.Context, entityID uint, query *model.ListFeedbackQuery) ([]model.FeedbackWithUsername, error) {
	logger := middleware.GetLogger(ctx)

	// 存在しないエンティティへの問い合わせは NotFound
	if _, err := s.entityRepo.FindByID(ctx, s.db, entityID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ENTITY_NOT_FOUND", "Entity not found.", "", model.ErrNotFound)
		}
		logger.Error("Failed to check entity existence", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
	}

	feedbacks, err := s.feedbackRepo.ListByEntityID(ctx, s.db, entityID, query)
	if err != nil {
		logger.Error("Failed to list feedbacks", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
	}
	return feedbacks, nil
}
