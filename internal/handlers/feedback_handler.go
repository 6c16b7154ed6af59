package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go_feedback_hub/internal/middleware"
	"go_feedback_hub/internal/model"
	"go_feedback_hub/internal/service"
	"go_feedback_hub/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type FeedbackHandler struct {
	service service.FeedbackService
}

func NewFeedbackHandler(s service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: s}
}

// parseEntityID はパスパラメータ entity_id を uint に変換します
func parseEntityID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "entity_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, model.NewAppError("INVALID_REQUEST", "Invalid entity ID.", "entity_id", model.ErrInvalidInput)
	}
	return uint(id), nil
}

// Post は認証済みユーザーとしてエンティティにフィードバックを投稿します
func (h *FeedbackHandler) Post(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	entityID, err := parseEntityID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := middleware.GetUserFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateFeedbackRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Malformed request body.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed for feedback", "errors", validationErrors.Error())
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	feedback, err := h.service.AddFeedback(r.Context(), entityID, user.ID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, feedback, logger)
}

// List はエンティティ宛のフィードバック一覧を投稿者名付きで返します。
// sort_order=asc|desc と filter_last_days=N をクエリで受け付ける。
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	entityID, err := parseEntityID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	query := &model.ListFeedbackQuery{
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	if raw := r.URL.Query().Get("filter_last_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			appErr := model.NewAppError("INVALID_REQUEST", "filter_last_days must be a non-negative integer.", "filter_last_days", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		query.FilterLastDays = days
	}

	feedbacks, err := h.service.ListFeedback(r.Context(), entityID, query)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if feedbacks == nil {
		feedbacks = []model.FeedbackWithUsername{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.FeedbackListResponse{Feedbacks: feedbacks}, logger)
}
