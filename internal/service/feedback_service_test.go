// internal/service/feedback_service_test.go
package service

import (
	"context"
	"testing"

	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_feedbackService_AddFeedback(t *testing.T) {
	ctx := context.Background()
	req := &model.CreateFeedbackRequest{Text: "great video"}

	t.Run("正常系: フィードバックが作成される", func(t *testing.T) {
		db := setupTestDBAuth()
		feedbackRepo := new(mocks.FeedbackRepository)
		entityRepo := new(mocks.EntityRepository)

		entityRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), uint(1)).
			Return(&model.Entity{ID: 1}, nil).Once()
		feedbackRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Feedback")).
			Run(func(args mock.Arguments) {
				fb := args.Get(2).(*model.Feedback)
				assert.Equal(t, "great video", fb.Text)
				assert.Equal(t, uint(1), fb.EntityID)
				assert.Equal(t, uint(5), fb.UserID)
				fb.ID = 10
			}).Return(nil).Once()

		s := NewFeedbackService(db, feedbackRepo, entityRepo)
		fb, err := s.AddFeedback(ctx, 1, 5, req)

		require.NoError(t, err)
		require.NotNil(t, fb)
		assert.Equal(t, uint(10), fb.ID)
		feedbackRepo.AssertExpectations(t)
		entityRepo.AssertExpectations(t)
	})

	t.Run("異常系: 存在しないエンティティへの投稿", func(t *testing.T) {
		db := setupTestDBAuth()
		feedbackRepo := new(mocks.FeedbackRepository)
		entityRepo := new(mocks.EntityRepository)

		entityRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), uint(99)).
			Return(nil, model.ErrNotFound).Once()

		s := NewFeedbackService(db, feedbackRepo, entityRepo)
		fb, err := s.AddFeedback(ctx, 99, 5, req)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Nil(t, fb)
		feedbackRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func Test_feedbackService_ListFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("異常系: 存在しないエンティティの一覧取得", func(t *testing.T) {
		db := setupTestDBAuth()
		feedbackRepo := new(mocks.FeedbackRepository)
		entityRepo := new(mocks.EntityRepository)

		entityRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), uint(99)).
			Return(nil, model.ErrNotFound).Once()

		s := NewFeedbackService(db, feedbackRepo, entityRepo)
		feedbacks, err := s.ListFeedback(ctx, 99, &model.ListFeedbackQuery{})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Nil(t, feedbacks)
	})

	t.Run("正常系: クエリがそのままリポジトリへ渡る", func(t *testing.T) {
		db := setupTestDBAuth()
		feedbackRepo := new(mocks.FeedbackRepository)
		entityRepo := new(mocks.EntityRepository)
		query := &model.ListFeedbackQuery{SortOrder: "desc", FilterLastDays: 7}

		entityRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), uint(1)).
			Return(&model.Entity{ID: 1}, nil).Once()
		feedbackRepo.On("ListByEntityID", ctx, mock.AnythingOfType("*gorm.DB"), uint(1), query).
			Return([]model.FeedbackWithUsername{}, nil).Once()

		s := NewFeedbackService(db, feedbackRepo, entityRepo)
		feedbacks, err := s.ListFeedback(ctx, 1, query)

		require.NoError(t, err)
		assert.Empty(t, feedbacks)
		feedbackRepo.AssertExpectations(t)
		entityRepo.AssertExpectations(t)
	})
}
