package model

import (
	"time"
)

// VerificationToken はメールアドレス確認用のワンタイムトークン。
// user_id にユニーク制約は張らない（同一ユーザーに複数トークンが存在し得る前提で、
// 検証時は渡されたトークン行だけを消費する）。有効期限は持たない。
type VerificationToken struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Token  string `gorm:"size:255;unique;not null" json:"token"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// PasswordResetToken はパスワード再設定用のトークン。こちらは有効期限あり。
type PasswordResetToken struct {
	Token     string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
