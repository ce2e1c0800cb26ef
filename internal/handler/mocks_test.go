package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/newsletterai/internal/auth"
	"github.com/hitoshi/newsletterai/internal/generate"
	"github.com/hitoshi/newsletterai/internal/middleware"
	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/newsletter"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn       func(ctx context.Context, in auth.RegisterInput) (*model.User, *model.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*model.User, *model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	updateProfileFn  func(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error)
	changePasswordFn func(ctx context.Context, userID, currentPassword, newPassword string) error
	withdrawFn       func(ctx context.Context, userID string) error
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, update)
	}
	return &model.User{ID: userID}, nil
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockGenerateService はGenerateServiceInterfaceのモック実装。
type mockGenerateService struct {
	fromTopicFn func(ctx context.Context, topic string, style generate.Style) (string, error)
	fromFeedsFn func(ctx context.Context, userID string, feedIDs []string, style generate.Style) (string, error)
	suggestFn   func(ctx context.Context, currentTopic string) ([]string, error)
}

func (m *mockGenerateService) FromTopic(ctx context.Context, topic string, style generate.Style) (string, error) {
	if m.fromTopicFn != nil {
		return m.fromTopicFn(ctx, topic, style)
	}
	return "", nil
}

func (m *mockGenerateService) FromFeeds(ctx context.Context, userID string, feedIDs []string, style generate.Style) (string, error) {
	if m.fromFeedsFn != nil {
		return m.fromFeedsFn(ctx, userID, feedIDs, style)
	}
	return "", nil
}

func (m *mockGenerateService) Suggest(ctx context.Context, currentTopic string) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, currentTopic)
	}
	return nil, nil
}

// mockNewsletterService はNewsletterServiceInterfaceのモック実装。
type mockNewsletterService struct {
	createFn func(ctx context.Context, userID string, in newsletter.CreateInput) (*model.Newsletter, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Newsletter, error)
	getFn    func(ctx context.Context, userID, id string) (*model.Newsletter, error)
	updateFn func(ctx context.Context, userID, id string, in newsletter.UpdateInput) (*model.Newsletter, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (m *mockNewsletterService) Create(ctx context.Context, userID string, in newsletter.CreateInput) (*model.Newsletter, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockNewsletterService) List(ctx context.Context, userID string) ([]*model.Newsletter, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockNewsletterService) Get(ctx context.Context, userID, id string) (*model.Newsletter, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockNewsletterService) Update(ctx context.Context, userID, id string, in newsletter.UpdateInput) (*model.Newsletter, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, in)
	}
	return nil, nil
}

func (m *mockNewsletterService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

// mockFeedService はFeedServiceInterfaceのモック実装。
type mockFeedService struct {
	listFeedsFn  func(ctx context.Context, userID string) ([]*model.RssFeed, error)
	addFeedFn    func(ctx context.Context, userID, rawURL string) (*model.RssFeed, error)
	deleteFeedFn func(ctx context.Context, userID, feedID string) error
}

func (m *mockFeedService) ListFeeds(ctx context.Context, userID string) ([]*model.RssFeed, error) {
	if m.listFeedsFn != nil {
		return m.listFeedsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFeedService) AddFeed(ctx context.Context, userID, rawURL string) (*model.RssFeed, error) {
	if m.addFeedFn != nil {
		return m.addFeedFn(ctx, userID, rawURL)
	}
	return nil, nil
}

func (m *mockFeedService) DeleteFeed(ctx context.Context, userID, feedID string) error {
	if m.deleteFeedFn != nil {
		return m.deleteFeedFn(ctx, userID, feedID)
	}
	return nil
}

// mockNotificationService はNotificationServiceInterfaceのモック実装。
type mockNotificationService struct {
	listFn        func(ctx context.Context, userID string) ([]*model.Notification, error)
	markReadFn    func(ctx context.Context, userID, id string) error
	markAllReadFn func(ctx context.Context, userID string) (int, error)
}

func (m *mockNotificationService) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, userID, id)
	}
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

// mockBillingService はBillingServiceInterfaceのモック実装。
type mockBillingService struct {
	createCheckoutSessionFn func(ctx context.Context, userID, priceID string) (string, error)
	handleWebhookFn         func(ctx context.Context, payload []byte, signature string) error
}

func (m *mockBillingService) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	if m.createCheckoutSessionFn != nil {
		return m.createCheckoutSessionFn(ctx, userID, priceID)
	}
	return "", nil
}

func (m *mockBillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if m.handleWebhookFn != nil {
		return m.handleWebhookFn(ctx, payload, signature)
	}
	return nil
}

// mockAdminService はAdminServiceInterfaceのモック実装。
type mockAdminService struct {
	statsFn      func(ctx context.Context) (*model.AdminStats, error)
	listUsersFn  func(ctx context.Context) ([]*model.UserSummary, error)
	deleteUserFn func(ctx context.Context, adminID, userID string) error
}

func (m *mockAdminService) Stats(ctx context.Context) (*model.AdminStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &model.AdminStats{}, nil
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockAdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, adminID, userID)
	}
	return nil
}

// mockValidator はRequestValidatorのモック実装。
type mockValidator struct {
	structFn func(i any) error
}

func (m *mockValidator) Struct(i any) error {
	if m.structFn != nil {
		return m.structFn(i)
	}
	return nil
}

// mockPinger はPingerのモック実装。
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeErrorBody はレスポンスボディを統一エラーフォーマットとしてパースするヘルパー。
func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// decodeBody はレスポンスボディをdstにデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
