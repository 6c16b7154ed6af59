package model

import (
	"time"
)

// Feedback はエンティティに対するコメント。作成後は不変（編集・削除APIは無い）。
// created_at はINSERT時にサーバー側で採番される。
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:255;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EntityID  uint      `gorm:"not null;index" json:"entity_id"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// CreateFeedbackRequest は投稿APIのリクエストボディ (DTO)
type CreateFeedbackRequest struct {
	Text string `json:"text" validate:"required,min=1,max=255"`
}

// FeedbackWithUsername は投稿者のユーザー名をJOINで付加した一覧用ビュー
type FeedbackWithUsername struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	EntityID  uint      `json:"entity_id"`
	Username  string    `json:"username"`
}

// FeedbackListResponse は一覧APIのレスポンス
type FeedbackListResponse struct {
	Feedbacks []FeedbackWithUsername `json:"feedbacks"`
}

// ListFeedbackQuery は一覧APIのクエリパラメータ
type ListFeedbackQuery struct {
	SortOrder      string // "asc" (デフォルト) または "desc"
	FilterLastDays int    // 正の値なら直近N日に絞り込む
}
