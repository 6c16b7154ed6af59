package service

import (
	"context"
	"errors"
	"net/http"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/repository"
	"go_feedback_hub/internal/urlutil"

	"gorm.io/gorm"
)

type EntityService interface {
	CreateEntity(ctx context.Context, req *model.CreateEntityRequest) (*model.Entity, error)
	SearchEntities(ctx context.Context, url string) ([]model.Entity, error)
	FetchEntityInfo(ctx context.Context, url string) *model.EntityInfo
}

type entityService struct {
	db         *gorm.DB
	entityRepo repository.EntityRepository
	httpClient *http.Client
}

// NewEntityService は EntityService の新しいインスタンスを生成します。
// httpClient は外部ページのメタデータ取得に使われ、nil なら設定のタイムアウトで生成する。
func NewEntityService(db *gorm.DB, entityRepo repository.EntityRepository, httpClient *http.Client, cfg *config.Config) EntityService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Fetch.Timeout()}
	}
	return &entityService{
		db:         db,
		entityRepo: entityRepo,
		httpClient: httpClient,
	}
}

// CreateEntity はURLを正規化してからエンティティを登録します。
// 正規化後のURLが既に存在する場合は Conflict になる。
func (s *entityService) CreateEntity(ctx context.Context, req *model.CreateEntityRequest) (*model.Entity, error) {
	logger := middleware.GetLogger(ctx)
	canonicalURL := urlutil.CanonicalizeVideoURL(req.URL)

	var created *model.Entity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 正規URLでの重複チェック
		_, err := s.entityRepo.FindByURL(ctx, tx, canonicalURL)
		if err == nil {
			logger.Warn("Entity already exists for canonical URL", "url", canonicalURL)
			return model.NewAppError("DUPLICATE_ENTITY", "Entity with this URL already exists.", "url", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check entity existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
		}

		entity := &model.Entity{
			URL:      canonicalURL,
			Name:     req.Name,
			Platform: req.Platform,
		}
		if err := s.entityRepo.Create(ctx, tx, entity); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("DUPLICATE_ENTITY", "Entity with this URL or name already exists.", "url,name", model.ErrConflict)
			}
			logger.Error("Failed to create entity in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to create entity.", "", err)
		}
		created = entity
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entity created", "entity_id", created.ID, "url", created.URL)
	return created, nil
}

// SearchEntities は検索クエリを正規化した上で、保存済み正規URLへの部分一致検索をします
func (s *entityService) SearchEntities(ctx context.Context, url string) ([]model.Entity, error) {
	logger := middleware.GetLogger(ctx)
	canonicalURL := urlutil.CanonicalizeVideoURL(url)

	entities, err := s.entityRepo.SearchByURL(ctx, s.db, canonicalURL)
	if err != nil {
		logger.Error("Failed to search entities", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal server error occurred.", "", err)
	}
	return entities, nil
}

// FetchEntityInfo は対象ページのメタデータをベストエフォートで取得します。
// 取得失敗時も name が空になるだけで、エラーにはならない。永続化はしない。
func (s *entityService) FetchEntityInfo(ctx context.Context, url string) *model.EntityInfo {
	canonicalURL := urlutil.CanonicalizeVideoURL(url)

	name := urlutil.FetchOpenGraphTitle(ctx, s.httpClient, canonicalURL)
	platform := urlutil.PlatformName(canonicalURL)

	return &model.EntityInfo{
		URL:      canonicalURL,
		Name:     name,
		Platform: platform,
	}
}
