package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/newsletterai/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.StatusRecorder

	// 運用エンドポイント
	DB             Pinger
	MetricsHandler http.Handler

	Validator RequestValidator

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	GenerateService     GenerateServiceInterface
	NewsletterService   NewsletterServiceInterface
	FeedService         FeedServiceInterface
	UserService         UserServiceInterface
	NotificationService NotificationServiceInterface
	BillingService      BillingServiceInterface
	AdminService        AdminServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認証が必要なルートはさらに Session → RateLimit(General) → CSRF を通る。
// 生成系のルートにはAI生成専用のレート制限を追加する。
// 認証ルート（/auth/*）とStripe Webhookはセッションの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Validator)
	generateHandler := NewGenerateHandler(deps.GenerateService, deps.Validator)
	newsletterHandler := NewNewsletterHandler(deps.NewsletterService, deps.Validator)
	feedHandler := NewFeedHandler(deps.FeedService, deps.Validator)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig, deps.Validator)
	notificationHandler := NewNotificationHandler(deps.NotificationService)
	billingHandler := NewBillingHandler(deps.BillingService, deps.Validator)
	adminHandler := NewAdminHandler(deps.AdminService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)
	r.Post("/stripe/webhook", billingHandler.Webhook)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// AI生成（生成専用レート制限を追加）
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.GenerateMiddleware())
			r.Post("/api/generate", generateHandler.GenerateFromTopic)
			r.Post("/api/generate/rss", generateHandler.GenerateFromFeeds)
		})
		r.Post("/api/suggest", generateHandler.Suggest)

		// ニュースレター管理
		r.Route("/api/newsletters", func(r chi.Router) {
			r.Get("/", newsletterHandler.List)
			r.Post("/", newsletterHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", newsletterHandler.Get)
				r.Patch("/", newsletterHandler.Update)
				r.Delete("/", newsletterHandler.Delete)
			})
		})

		// RSSフィード管理
		r.Route("/api/rss", func(r chi.Router) {
			r.Get("/", feedHandler.ListFeeds)
			r.Post("/", feedHandler.AddFeed)
			r.Delete("/{id}", feedHandler.DeleteFeed)
		})

		r.Post("/api/stripe/checkout", billingHandler.Checkout)

		// ユーザー管理
		r.Route("/api/user", func(r chi.Router) {
			r.Delete("/", userHandler.Withdraw)
			r.Patch("/profile", userHandler.UpdateProfile)
			r.Post("/change-password", userHandler.ChangePassword)
		})

		// 通知
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Patch("/{id}/read", notificationHandler.MarkRead)
			r.Post("/read-all", notificationHandler.MarkAllRead)
		})

		// 管理画面（ADMINロールのみ）
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.NewAdminMiddleware(deps.UserFinder))
			r.Get("/stats", adminHandler.Stats)
			r.Get("/users", adminHandler.ListUsers)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
		})
	})

	return r
}
