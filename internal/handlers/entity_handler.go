package handlers

import (
	"errors"
	"net/http"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/service"
	"go_feedback_hub/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type EntityHandler struct {
	service service.EntityService
}

func NewEntityHandler(s service.EntityService) *EntityHandler {
	return &EntityHandler{service: s}
}

// Create は新しいエンティティ (フィードバック対象) を登録します。
// URLは保存前に正規化され、正規化後の重複は 400 になる。
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.CreateEntityRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Malformed request body.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed for entity creation", "errors", validationErrors.Error())
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	entity, err := h.service.CreateEntity(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, entity, logger)
}

// Search は保存済みエンティティをURLの部分一致で検索します。
// url パラメータが空でも全件が返る (クエリも正規化されるため、生のURLでもヒットする)。
func (h *EntityHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	url := r.URL.Query().Get("url")
	entities, err := h.service.SearchEntities(r.Context(), url)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	// 0件でも null ではなく空配列を返す
	if entities == nil {
		entities = []model.Entity{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.EntityListResponse{Entities: entities}, logger)
}

// FetchInfo は対象ページのメタデータ (タイトル・プラットフォーム名) を
// 取得して返します。何も保存しないプレビュー用エンドポイント。
func (h *EntityHandler) FetchInfo(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	url := r.URL.Query().Get("url")
	if url == "" {
		appErr := model.NewAppError("INVALID_REQUEST", "Query parameter 'url' is required.", "url", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	info := h.service.FetchEntityInfo(r.Context(), url)
	webutil.RespondWithJSON(w, http.StatusOK, info, logger)
}
