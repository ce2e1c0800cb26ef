package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsletterai/internal/middleware"
	"github.com/hitoshi/newsletterai/internal/model"
)

// maxWebhookBytes はStripe Webhookのボディ上限。
const maxWebhookBytes = 65536

// BillingServiceInterface は決済ハンドラーが必要とするサービスインターフェース。
type BillingServiceInterface interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// BillingHandler はStripe決済のHTTPハンドラー。
type BillingHandler struct {
	service   BillingServiceInterface
	validator RequestValidator
}

// NewBillingHandler はBillingHandlerを生成する。
func NewBillingHandler(service BillingServiceInterface, validator RequestValidator) *BillingHandler {
	return &BillingHandler{
		service:   service,
		validator: validator,
	}
}

type checkoutRequest struct {
	PriceID string `json:"priceId" validate:"max=255"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// Checkout はStripeのチェックアウトセッションを作成し、リダイレクトURLを返す。
// POST /api/stripe/checkout
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), userID, req.PriceID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

// Webhook はStripeからのイベント通知を受け付ける。
// 署名検証のため、ボディはデコードせずに生のまま渡す。
// POST /stripe/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		slog.Warn("failed to read webhook body", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid webhook payload"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
