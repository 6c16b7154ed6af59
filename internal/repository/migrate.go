package repository

import (
	"fmt"

	"go_feedback_hub/internal/model"

	"gorm.io/gorm"
)

// Migrate はスキーマを最新化します。
// サーバー起動前に cmd/main.go から一度だけ明示的に呼び出す。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.VerificationToken{},
		&model.PasswordResetToken{},
		&model.Entity{},
		&model.Feedback{},
	)
	if err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
