package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/newsletterai/internal/generate"
)

// GenerateServiceInterface はAI生成ハンドラーが必要とするサービスインターフェース。
type GenerateServiceInterface interface {
	FromTopic(ctx context.Context, topic string, style generate.Style) (string, error)
	FromFeeds(ctx context.Context, userID string, feedIDs []string, style generate.Style) (string, error)
	Suggest(ctx context.Context, currentTopic string) ([]string, error)
}

// GenerateHandler はAIによるニュースレター生成のHTTPハンドラー。
// 生成結果は保存せずに返す。保存はNewsletterHandlerが担う。
type GenerateHandler struct {
	service   GenerateServiceInterface
	validator RequestValidator
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(service GenerateServiceInterface, validator RequestValidator) *GenerateHandler {
	return &GenerateHandler{
		service:   service,
		validator: validator,
	}
}

// styleFields はレイアウト・トーン・テーマの共通リクエストフィールド。
type styleFields struct {
	Layout string `json:"layout" validate:"max=50"`
	Tone   string `json:"tone" validate:"max=50"`
	Theme  string `json:"theme" validate:"max=50"`
}

func (s styleFields) style() generate.Style {
	return generate.Style{Layout: s.Layout, Tone: s.Tone, Theme: s.Theme}
}

type generateTopicRequest struct {
	Topic string `json:"topic" validate:"max=500"`
	styleFields
}

type generateFeedsRequest struct {
	FeedIDs []string `json:"feedIds" validate:"max=50"`
	styleFields
}

type suggestRequest struct {
	CurrentTopic string `json:"currentTopic" validate:"max=500"`
}

type contentResponse struct {
	Content string `json:"content"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// GenerateFromTopic はトピックからニュースレター本文を生成する。
// POST /api/generate
func (h *GenerateHandler) GenerateFromTopic(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req generateTopicRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	content, err := h.service.FromTopic(r.Context(), req.Topic, req.style())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentResponse{Content: content})
}

// GenerateFromFeeds は選択したRSSフィードの記事からダイジェストを生成する。
// POST /api/generate/rss
func (h *GenerateHandler) GenerateFromFeeds(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req generateFeedsRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	content, err := h.service.FromFeeds(r.Context(), userID, req.FeedIDs, req.style())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentResponse{Content: content})
}

// Suggest はトピック候補を返す。
// POST /api/suggest
func (h *GenerateHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req suggestRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), req.CurrentTopic)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: suggestions})
}
