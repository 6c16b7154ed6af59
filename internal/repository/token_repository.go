//go:generate mockery --name TokenRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"

	"gorm.io/gorm"
)

type TokenRepository interface {
	CreateVerificationToken(ctx context.Context, db *gorm.DB, token *model.VerificationToken) error
	FindVerificationToken(ctx context.Context, db *gorm.DB, token string) (*model.VerificationToken, error)
	FindVerificationTokenByUserID(ctx context.Context, db *gorm.DB, userID uint) (*model.VerificationToken, error)
	DeleteVerificationToken(ctx context.Context, db *gorm.DB, token string) error
	DeleteVerificationTokensByUserID(ctx context.Context, db *gorm.DB, userID uint) error
	CreatePasswordResetToken(ctx context.Context, db *gorm.DB, token *model.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, db *gorm.DB, token string) (*model.PasswordResetToken, error)
	DeletePasswordResetToken(ctx context.Context, db *gorm.DB, token string) error
	DeletePasswordResetTokensByUserID(ctx context.Context, db *gorm.DB, userID uint) error
}

type gormTokenRepository struct{}

func NewGormTokenRepository() TokenRepository {
	return &gormTokenRepository{}
}

func (r *gormTokenRepository) CreateVerificationToken(ctx context.Context, db *gorm.DB, token *model.VerificationToken) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create verification token", "error", err)
		return fmt.Errorf("gormTokenRepository.CreateVerificationToken: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindVerificationToken(ctx context.Context, db *gorm.DB, tokenStr string) (*model.VerificationToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.VerificationToken
	if err := db.WithContext(ctx).Where("token = ?", tokenStr).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find verification token", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindVerificationToken: %w", err)
	}
	return &token, nil
}

// FindVerificationTokenByUserID はユーザーに紐づくトークンを返します。
// ユーザーごとの一意制約は無いため複数行あり得るが、その場合は最初の1件を返す。
func (r *gormTokenRepository) FindVerificationTokenByUserID(ctx context.Context, db *gorm.DB, userID uint) (*model.VerificationToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.VerificationToken
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("id").First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find verification token by user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("gormTokenRepository.FindVerificationTokenByUserID: %w", err)
	}
	return &token, nil
}

func (r *gormTokenRepository) DeleteVerificationToken(ctx context.Context, db *gorm.DB, tokenStr string) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("token = ?", tokenStr).Delete(&model.VerificationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete verification token", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.DeleteVerificationToken: %w", result.Error)
	}
	return nil
}

func (r *gormTokenRepository) DeleteVerificationTokensByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.VerificationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete verification tokens by user", "error", result.Error, "user_id", userID)
		return fmt.Errorf("gormTokenRepository.DeleteVerificationTokensByUserID: %w", result.Error)
	}
	return nil
}

func (r *gormTokenRepository) CreatePasswordResetToken(ctx context.Context, db *gorm.DB, token *model.PasswordResetToken) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create password reset token", "error", err)
		return fmt.Errorf("gormTokenRepository.CreatePasswordResetToken: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindPasswordResetToken(ctx context.Context, db *gorm.DB, tokenStr string) (*model.PasswordResetToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.PasswordResetToken
	if err := db.WithContext(ctx).Where("token = ?", tokenStr).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find password reset token", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindPasswordResetToken: %w", err)
	}
	return &token, nil
}

func (r *gormTokenRepository) DeletePasswordResetToken(ctx context.Context, db *gorm.DB, tokenStr string) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("token = ?", tokenStr).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete password reset token", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.DeletePasswordResetToken: %w", result.Error)
	}
	return nil
}

func (r *gormTokenRepository) DeletePasswordResetTokensByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete password reset tokens by user", "error", result.Error, "user_id", userID)
		return fmt.Errorf("gormTokenRepository.DeletePasswordResetTokensByUserID: %w", result.Error)
	}
	return nil
}
