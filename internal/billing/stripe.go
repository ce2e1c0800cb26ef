// Package billing はStripeによる有料プランの購入処理を提供する。
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// ErrNotConfigured はStripeのシークレットキーが未設定の場合のエラー。
var ErrNotConfigured = errors.New("stripe is not configured")

// CheckoutRequest はチェックアウトセッション作成の入力。
type CheckoutRequest struct {
	PriceID       string
	CustomerEmail string
	UserID        string
	SuccessURL    string
	CancelURL     string
}

// CheckoutProvider はチェックアウトセッションを作成し、リダイレクト先URLを返すインターフェース。
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (string, error)
}

// StripeCheckout はStripe Checkoutを利用したCheckoutProvider実装。
type StripeCheckout struct {
	api *client.API
}

// NewStripeCheckout はStripeCheckoutを生成する。backendsがnilの場合はStripe本番APIを使用する。
func NewStripeCheckout(secretKey string, backends *stripe.Backends) *StripeCheckout {
	return &StripeCheckout{api: client.New(secretKey, backends)}
}

// CreateSession はサブスクリプションモードのチェックアウトセッションを作成する。
// userIDはWebhookで購入者を特定するためメタデータに格納する。
func (s *StripeCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		CustomerEmail:            stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", req.UserID)

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

// disabledCheckout はシークレットキー未設定時に使用する。
type disabledCheckout struct{}

func (disabledCheckout) CreateSession(context.Context, CheckoutRequest) (string, error) {
	return "", ErrNotConfigured
}

// NewCheckoutProvider はシークレットキーが設定されていればStripeCheckoutを、
// 未設定なら常に失敗するCheckoutProviderを返す。
func NewCheckoutProvider(secretKey string) CheckoutProvider {
	if secretKey == "" {
		return disabledCheckout{}
	}
	return NewStripeCheckout(secretKey, nil)
}
