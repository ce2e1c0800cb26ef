package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/newsletterai/internal/model"
)

// FeedServiceInterface はRSSフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	ListFeeds(ctx context.Context, userID string) ([]*model.RssFeed, error)
	// AddFeed はURLを検証・検出した上でフィードを登録する。
	AddFeed(ctx context.Context, userID, rawURL string) (*model.RssFeed, error)
	DeleteFeed(ctx context.Context, userID, feedID string) error
}

// FeedHandler はRSSフィード管理のHTTPハンドラー。
type FeedHandler struct {
	service   FeedServiceInterface
	validator RequestValidator
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface, validator RequestValidator) *FeedHandler {
	return &FeedHandler{
		service:   service,
		validator: validator,
	}
}

// addFeedRequest はフィード登録リクエストのボディ。
// URLの形式はサービス層がINVALID_FEEDとして判定する。
type addFeedRequest struct {
	URL string `json:"url" validate:"max=2048"`
}

// ListFeeds はユーザーのフィード一覧を返す。
// GET /api/rss
func (h *FeedHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	feeds, err := h.service.ListFeeds(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(feeds, toFeedResponse))
}

// AddFeed はフィードを登録する。
// POST /api/rss
func (h *FeedHandler) AddFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addFeedRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	feed, err := h.service.AddFeed(r.Context(), userID, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFeedResponse(feed))
}

// DeleteFeed はフィードを削除する。
// DELETE /api/rss/{id}
func (h *FeedHandler) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFeed(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w)
}
