package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/newsletterai/internal/admin"
	"github.com/hitoshi/newsletterai/internal/ai"
	"github.com/hitoshi/newsletterai/internal/auth"
	"github.com/hitoshi/newsletterai/internal/billing"
	"github.com/hitoshi/newsletterai/internal/config"
	"github.com/hitoshi/newsletterai/internal/database"
	"github.com/hitoshi/newsletterai/internal/generate"
	"github.com/hitoshi/newsletterai/internal/handler"
	"github.com/hitoshi/newsletterai/internal/logger"
	"github.com/hitoshi/newsletterai/internal/mailer"
	"github.com/hitoshi/newsletterai/internal/metrics"
	"github.com/hitoshi/newsletterai/internal/middleware"
	"github.com/hitoshi/newsletterai/internal/newsletter"
	"github.com/hitoshi/newsletterai/internal/notification"
	"github.com/hitoshi/newsletterai/internal/repository"
	"github.com/hitoshi/newsletterai/internal/rss"
	"github.com/hitoshi/newsletterai/internal/security"
	"github.com/hitoshi/newsletterai/internal/user"
	"github.com/hitoshi/newsletterai/internal/validation"
	"github.com/hitoshi/newsletterai/internal/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout はグレースフルシャットダウンの最大待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, "info")

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("description", cmd.Description()),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// services はルーターに渡すサービス群とバックグラウンド資源をまとめたもの。
type services struct {
	deps        *handler.RouterDeps
	rateLimiter *middleware.RateLimiter
}

// newServices は設定とDB接続から全依存関係をワイヤリングする。
// 外部APIのキーが未設定の場合は、該当機能が常にエラーを返す実装に差し替わる。
func newServices(cfg *config.Config, db *sql.DB, log *slog.Logger, reg *prometheus.Registry) *services {
	collector := metrics.NewCollector(reg)

	// 1. リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	newsletterRepo := repository.NewPostgresNewsletterRepo(db)
	feedRepo := repository.NewPostgresRssFeedRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)
	adminRepo := repository.NewPostgresAdminRepo(db)

	// 2. セキュリティ
	sanitizer := security.NewSanitizer()
	urlGuard := security.NewURLGuard()

	// 3. 通知（他サービスの副作用として使う）
	notificationService := notification.NewService(notificationRepo, log)

	// 4. AI生成
	aiClient := ai.NewOpenAIClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL)
	fetcher := rss.NewFetcher(urlGuard, cfg.RSSFetchTimeout, cfg.RSSFetchMaxSize)
	articles := rss.NewCollector(
		rss.NewFeedArticleSource(fetcher, sanitizer),
		cfg.RSSFetchConcurrency, log, collector,
	)
	generateService := generate.NewService(generate.Dependencies{
		Topic:     ai.NewFallback(aiClient, ai.TopicModels, log, collector),
		Digest:    ai.NewFallback(aiClient, ai.DigestModels, log, collector),
		Suggester: aiClient,
		Feeds:     feedRepo,
		Articles:  articles,
		Recorder:  collector,
		Logger:    log,
	}, generate.Config{Timeout: cfg.GenerationTimeout})

	// 5. メール配信とニュースレター
	if !cfg.EmailEnabled() {
		log.Warn("RESEND_API_KEY is not set; sending newsletters will fail")
	}
	sender := mailer.NewNewsletterSender(
		mailer.NewRenderer(sanitizer),
		mailer.NewTransport(cfg.ResendAPIKey),
		cfg.EmailFrom, log, collector,
	)
	newsletterService := newsletter.NewService(newsletterRepo, userRepo, sender, notificationService, log)

	// 6. RSSフィード管理
	feedService := rss.NewService(feedRepo, userRepo, rss.NewProber(fetcher), log)

	// 7. 課金
	if !cfg.BillingEnabled() {
		log.Warn("STRIPE_SECRET_KEY is not set; checkout is disabled")
	}
	billingService := billing.NewService(
		billing.NewCheckoutProvider(cfg.StripeSecretKey),
		userRepo, notificationService,
		billing.Config{BaseURL: cfg.BaseURL, WebhookSecret: cfg.StripeWebhookSecret},
		log,
	)

	// 8. 認証・ユーザー・管理
	authService := auth.NewService(userRepo, sessionRepo, auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge})
	userService := user.NewService(userRepo, sessionRepo, notificationService)
	adminService := admin.NewService(adminRepo, userRepo, log)

	// 9. ミドルウェア設定
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     middleware.PerMinute(cfg.RateLimitGeneral),
		GeneralBurst:    cfg.RateLimitGeneral,
		GenerateRate:    middleware.PerMinute(cfg.RateLimitGenerate),
		GenerateBurst:   cfg.RateLimitGenerate,
		CleanupInterval: middleware.DefaultRateLimiterConfig().CleanupInterval,
	})

	deps := &handler.RouterDeps{
		Logger:            log,
		SessionFinder:     sessionRepo,
		UserFinder:        userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:    rateLimiter,
		StatusRecorder: collector,

		DB:             db,
		MetricsHandler: metrics.Handler(reg),

		Validator: validation.New(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		GenerateService:     generateService,
		NewsletterService:   newsletterService,
		FeedService:         feedService,
		UserService:         userService,
		NotificationService: notificationService,
		BillingService:      billingService,
		AdminService:        adminService,
	}

	return &services{deps: deps, rateLimiter: rateLimiter}
}

// newRegistry はGo runtimeとプロセスのメトリクスを含むレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Connect(context.Background(), cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. 依存関係のワイヤリング
	svc := newServices(cfg, db, slog.Default(), newRegistry())
	defer svc.rateLimiter.Stop()

	router := handler.NewRouter(svc.deps)

	// 3. HTTPサーバーの起動
	// AI生成はGENERATION_TIMEOUTまでかかるため、WriteTimeoutはそれより長くする
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、クリーンアップジョブをcronスケジュールで実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Connect(context.Background(), cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	job := cleanup.NewCleanupJob(db, slog.Default())
	if cfg.NotificationRetentionDays > 0 {
		job.RetentionDays = cfg.NotificationRetentionDays
	}

	scheduler, err := cleanup.NewScheduler(cfg.CleanupSchedule, job, slog.Default())
	if err != nil {
		return err
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("worker starting",
		slog.String("schedule", cfg.CleanupSchedule),
		slog.Int("retention_days", job.RetentionDays),
	)

	// 起動直後に1回実行
	if _, err := job.Run(ctx); err != nil {
		slog.Error("initial cleanup run failed", slog.String("error", err.Error()))
	}

	scheduler.Start()
	<-ctx.Done()

	slog.Info("shutting down worker...")
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	scheduler.Stop(stopCtx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
