package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// UserStore はプラン更新に必要なユーザー操作のインターフェース。
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdatePlan(ctx context.Context, id string, plan model.Plan, customerID string) error
}

// Notifier は通知を作成するインターフェース。
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ model.NotificationType)
}

// Config は課金サービスの設定。
type Config struct {
	// BaseURL はチェックアウト完了・キャンセル後のリダイレクト先の基点。
	BaseURL string
	// WebhookSecret はWebhook署名検証用のシークレット。
	WebhookSecret string
}

// Service はチェックアウトとWebhook処理を統括する。
type Service struct {
	provider CheckoutProvider
	users    UserStore
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(provider CheckoutProvider, users UserStore, notifier Notifier, cfg Config, logger *slog.Logger) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{
		provider: provider,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateCheckoutSession はログインユーザー向けのチェックアウトセッションを作成し、リダイレクト先URLを返す。
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	if strings.TrimSpace(priceID) == "" {
		return "", model.NewValidationError("Price ID is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewUserNotFoundError("User not found")
	}

	url, err := s.provider.CreateSession(ctx, CheckoutRequest{
		PriceID:       priceID,
		CustomerEmail: user.Email,
		UserID:        user.ID,
		SuccessURL:    s.cfg.BaseURL + "/dashboard?success=true",
		CancelURL:     s.cfg.BaseURL + "/pricing?canceled=true",
	})
	if err != nil {
		s.logger.Error("チェックアウトセッションの作成に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return "", model.NewCheckoutFailedError(err.Error())
	}
	return url, nil
}

// HandleWebhook はStripeからのWebhookを署名検証した上で処理する。
// checkout.session.completed以外のイベントは何もせず受理する。
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return model.NewValidationError("Webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.logger.Warn("Webhook署名の検証に失敗しました", slog.String("error", err.Error()))
		return model.NewValidationError("Invalid webhook signature")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug("ignoring stripe event", slog.String("type", string(event.Type)))
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return model.NewValidationError("Invalid checkout session payload")
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		s.logger.Warn("checkout session without userId metadata", slog.String("session_id", session.ID))
		return nil
	}

	var customerID string
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	if err := s.users.UpdatePlan(ctx, userID, model.PlanPro, customerID); err != nil {
		return fmt.Errorf("プランの更新に失敗しました: %w", err)
	}

	s.logger.Info("plan upgraded",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
	)
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, "Plan Upgraded",
			"Your subscription is active. Enjoy unlimited newsletters and RSS feeds.",
			model.NotificationSuccess)
	}
	return nil
}
