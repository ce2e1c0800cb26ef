package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/newsletterai/internal/generate"
	"github.com/hitoshi/newsletterai/internal/middleware"
	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/newsletter"
	"github.com/hitoshi/newsletterai/internal/validation"
)

// mockSessionFinderForRouter はRouter統合テスト用のSessionFinderモック。
type mockSessionFinderForRouter struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinderForRouter) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

// mockUserFinderForRouter はRouter統合テスト用のUserFinderモック。
type mockUserFinderForRouter struct {
	users map[string]*model.User
}

func (m *mockUserFinderForRouter) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

const (
	testCSRFToken    = "csrf-token-for-test"
	userSessionID    = "user-session"
	adminSessionID   = "admin-session"
	routerTestUserID = "user-1"
)

// createTestRouter はテスト用の完全なルーターを構築するヘルパー。
func createTestRouter(t *testing.T, limits middleware.RateLimiterConfig) http.Handler {
	t.Helper()

	expires := time.Now().Add(time.Hour)
	sessions := &mockSessionFinderForRouter{
		sessions: map[string]*model.Session{
			userSessionID:  {ID: userSessionID, UserID: routerTestUserID, ExpiresAt: expires},
			adminSessionID: {ID: adminSessionID, UserID: "admin-1", ExpiresAt: expires},
		},
	}
	users := &mockUserFinderForRouter{
		users: map[string]*model.User{
			routerTestUserID: {ID: routerTestUserID, Role: model.RoleUser},
			"admin-1":        {ID: "admin-1", Role: model.RoleAdmin},
		},
	}

	rl := middleware.NewRateLimiter(limits)
	t.Cleanup(rl.Stop)

	deps := &RouterDeps{
		SessionFinder:     sessions,
		UserFinder:        users,
		CORSAllowedOrigin: "http://localhost:3000",
		CSRFConfig:        middleware.CSRFConfig{CookieSecure: false},
		RateLimiter:       rl,
		DB:                &mockPinger{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
		Validator:   validation.New(),
		AuthService: &mockAuthService{},
		AuthConfig:  testAuthConfig,
		GenerateService: &mockGenerateService{
			fromTopicFn: func(ctx context.Context, topic string, style generate.Style) (string, error) {
				return "# " + topic, nil
			},
		},
		NewsletterService: &mockNewsletterService{
			createFn: func(ctx context.Context, userID string, in newsletter.CreateInput) (*model.Newsletter, error) {
				return &model.Newsletter{ID: "nl-1", UserID: userID, Title: in.Title, Status: model.StatusDraft}, nil
			},
			getFn: func(ctx context.Context, userID, id string) (*model.Newsletter, error) {
				return &model.Newsletter{ID: id, UserID: userID, Status: model.StatusDraft}, nil
			},
		},
		FeedService:         &mockFeedService{},
		UserService:         &mockUserService{},
		NotificationService: &mockNotificationService{},
		BillingService:      &mockBillingService{},
		AdminService:        &mockAdminService{},
	}

	return NewRouter(deps)
}

// newAuthedRequest はセッションCookieとCSRFトークンを付与したリクエストを作るヘルパー。
func newAuthedRequest(method, path, sessionID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	return req
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/csrf-token", http.StatusOK},
		{http.MethodGet, "/auth/me", http.StatusUnauthorized},
		{http.MethodPost, "/auth/logout", http.StatusOK},
		{http.MethodPost, "/stripe/webhook", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// 認証が必要なルートはセッションなしで401を返すことを検証
func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/generate"},
		{http.MethodPost, "/api/generate/rss"},
		{http.MethodPost, "/api/suggest"},
		{http.MethodGet, "/api/newsletters"},
		{http.MethodPost, "/api/newsletters"},
		{http.MethodGet, "/api/newsletters/nl-1"},
		{http.MethodPatch, "/api/newsletters/nl-1"},
		{http.MethodDelete, "/api/newsletters/nl-1"},
		{http.MethodGet, "/api/rss"},
		{http.MethodPost, "/api/rss"},
		{http.MethodDelete, "/api/rss/feed-1"},
		{http.MethodPost, "/api/stripe/checkout"},
		{http.MethodDelete, "/api/user"},
		{http.MethodPatch, "/api/user/profile"},
		{http.MethodPost, "/api/user/change-password"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPatch, "/api/notifications/n-1/read"},
		{http.MethodPost, "/api/notifications/read-all"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodDelete, "/api/admin/users/user-2"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_AuthenticatedGet(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/newsletters/nl-7", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: userSessionID})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got newsletterResponse
	decodeBody(t, w, &got)
	if got.ID != "nl-7" || got.UserID != routerTestUserID {
		t.Errorf("response = %+v, want nl-7 owned by %s", got, routerTestUserID)
	}
}

// 状態変更リクエストはCSRFトークンなしで403になることを検証
func TestRouter_MutationWithoutCSRFIsForbidden(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/newsletters", strings.NewReader(`{"title":"t","topic":"x","content":"c"}`))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: userSessionID})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if body := decodeErrorBody(t, w); body.Code != "CSRF_VALIDATION_FAILED" {
		t.Errorf("code = %q, want CSRF_VALIDATION_FAILED", body.Code)
	}
}

func TestRouter_MutationWithCSRF(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	req := newAuthedRequest(http.MethodPost, "/api/newsletters", userSessionID, `{"title":"AI Weekly","topic":"x","content":"c"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

// ADMIN以外のユーザーは管理エンドポイントで401になることを検証
func TestRouter_AdminRequiresAdminRole(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/api/admin/stats", userSessionID, ""))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("user: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/api/admin/stats", adminSessionID, ""))
	if w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want %d", w.Code, http.StatusOK)
	}
}

// 生成系ルートは専用のレート制限を受け、他のルートは影響を受けないことを検証
func TestRouter_GenerateRateLimit(t *testing.T) {
	router := createTestRouter(t, middleware.RateLimiterConfig{
		GeneralRate:     middleware.PerMinute(120),
		GeneralBurst:    120,
		GenerateRate:    middleware.PerMinute(1),
		GenerateBurst:   1,
		CleanupInterval: time.Minute,
	})

	send := func(path, body string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodPost, path, userSessionID, body))
		return w.Code
	}

	if got := send("/api/generate", `{"topic":"AI"}`); got != http.StatusOK {
		t.Fatalf("first generate: status = %d, want %d", got, http.StatusOK)
	}
	if got := send("/api/generate", `{"topic":"AI"}`); got != http.StatusTooManyRequests {
		t.Errorf("second generate: status = %d, want %d", got, http.StatusTooManyRequests)
	}
	if got := send("/api/suggest", `{}`); got != http.StatusOK {
		t.Errorf("suggest: status = %d, want %d", got, http.StatusOK)
	}
}

func TestRouter_SecurityHeadersAndCORS(t *testing.T) {
	router := createTestRouter(t, middleware.DefaultRateLimiterConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}
