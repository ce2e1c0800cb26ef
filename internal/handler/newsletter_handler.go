package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/newsletter"
)

// NewsletterServiceInterface はニュースレターハンドラーが必要とするサービスインターフェース。
type NewsletterServiceInterface interface {
	Create(ctx context.Context, userID string, in newsletter.CreateInput) (*model.Newsletter, error)
	List(ctx context.Context, userID string) ([]*model.Newsletter, error)
	Get(ctx context.Context, userID, id string) (*model.Newsletter, error)
	Update(ctx context.Context, userID, id string, in newsletter.UpdateInput) (*model.Newsletter, error)
	Delete(ctx context.Context, userID, id string) error
}

// NewsletterHandler はニュースレター管理のHTTPハンドラー。
type NewsletterHandler struct {
	service   NewsletterServiceInterface
	validator RequestValidator
}

// NewNewsletterHandler はNewsletterHandlerを生成する。
func NewNewsletterHandler(service NewsletterServiceInterface, validator RequestValidator) *NewsletterHandler {
	return &NewsletterHandler{
		service:   service,
		validator: validator,
	}
}

// 必須チェックと状態の妥当性はサービス層が行う。
type createNewsletterRequest struct {
	Title   string `json:"title" validate:"max=500"`
	Topic   string `json:"topic" validate:"max=500"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type updateNewsletterRequest struct {
	Title   *string `json:"title" validate:"omitnil,max=500"`
	Topic   *string `json:"topic" validate:"omitnil,max=500"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

// List はユーザーのニュースレター一覧を新しい順に返す。
// GET /api/newsletters
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	newsletters, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(newsletters, toNewsletterResponse))
}

// Create はニュースレターを保存する。
// POST /api/newsletters
func (h *NewsletterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createNewsletterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	n, err := h.service.Create(r.Context(), userID, newsletter.CreateInput{
		Title:   req.Title,
		Topic:   req.Topic,
		Content: req.Content,
		Status:  model.NewsletterStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNewsletterResponse(n))
}

// Get はニュースレターを1件返す。
// GET /api/newsletters/{id}
func (h *NewsletterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	n, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponse(n))
}

// Update はニュースレターを部分更新する。SENTへの遷移ではメールを配信する。
// PATCH /api/newsletters/{id}
func (h *NewsletterHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateNewsletterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	in := newsletter.UpdateInput{
		Title:   req.Title,
		Topic:   req.Topic,
		Content: req.Content,
	}
	if req.Status != nil {
		status := model.NewsletterStatus(*req.Status)
		in.Status = &status
	}

	n, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponse(n))
}

// Delete はニュースレターを削除する。
// DELETE /api/newsletters/{id}
func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w)
}
