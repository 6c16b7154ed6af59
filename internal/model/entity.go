package model

// Entity はフィードバック対象の外部コンテンツ。
// URLは正規化済みの形で保存され、これが一意性のキーになる。
type Entity struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	URL      string `gorm:"size:255;unique;not null" json:"url"`
	Name     string `gorm:"size:255;unique;not null" json:"name"`
	Platform string `gorm:"size:50;not null" json:"platform"`

	Feedbacks []Feedback `gorm:"foreignKey:EntityID" json:"-"`
}

func (Entity) TableName() string {
	return "entities"
}

// CreateEntityRequest はエンティティ登録APIのリクエストボディ (DTO)
type CreateEntityRequest struct {
	URL      string `json:"url" validate:"required,max=255"`
	Name     string `json:"name" validate:"required,max=255"`
	Platform string `json:"platform" validate:"required,max=50"`
}

// EntityListResponse は検索APIのレスポンス
type EntityListResponse struct {
	Entities []Entity `json:"entities"`
}

// EntityInfo は外部ページから取得したメタデータ。永続化はしない。
type EntityInfo struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}
