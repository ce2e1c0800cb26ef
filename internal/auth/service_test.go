package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = "new-user-id"
	return nil
}

func (m *mockUserRepo) UpdateProfile(context.Context, string, model.ProfileUpdate) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (m *mockUserRepo) UpdatePlan(context.Context, string, model.Plan, string) error { return nil }

func (m *mockUserRepo) DeleteByID(context.Context, string) error { return nil }

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(context.Context, string) error { return nil }

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != code {
		t.Fatalf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

func TestRegister_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()

	var createdUser *model.User
	var createdSession *model.Session

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = "user-1"
			createdUser = user
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	user, session, err := svc.Register(ctx, RegisterInput{Name: " Test User ", Email: " Test@Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Email != "test@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Name != "Test User" {
		t.Errorf("name = %q", user.Name)
	}
	if createdUser.Role != model.RoleUser || createdUser.Plan != model.PlanFree {
		t.Errorf("role/plan = %q/%q, want USER/FREE", createdUser.Role, createdUser.Plan)
	}
	if createdUser.PasswordHash == "correct-horse" || !CheckPassword(createdUser.PasswordHash, "correct-horse") {
		t.Error("password should be stored as bcrypt hash")
	}

	if session == nil || createdSession == nil {
		t.Fatal("expected session to be created")
	}
	if session.UserID != "user-1" {
		t.Errorf("session userID = %q, want %q", session.UserID, "user-1")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64", len(session.ID))
	}
	if createdSession.ExpiresAt.Before(time.Now().Add(23 * time.Hour)) {
		t.Error("session should expire after SessionMaxAge")
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing"}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("Create should not be called for existing email")
			return nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "password123"})
	assertCode(t, err, model.ErrCodeEmailTaken)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "short"})
	assertCode(t, err, model.ErrCodeValidation)
}

func TestLogin_Success(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	var lookedUp string
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			lookedUp = email
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600})

	user, session, err := svc.Login(context.Background(), "USER@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if lookedUp != "user@example.com" {
		t.Errorf("lookup email = %q", lookedUp)
	}
	if user.ID != "user-1" || session.UserID != "user-1" {
		t.Errorf("user = %q, session user = %q", user.ID, session.UserID)
	}
}

// 未登録・パスワード不一致・パスワード未設定はすべて同じエラーになることを検証
func TestLogin_InvalidCredentials(t *testing.T) {
	hash, _ := HashPassword("password123")

	tests := []struct {
		name string
		user *model.User
	}{
		{"未登録", nil},
		{"パスワード不一致", &model.User{ID: "u1", PasswordHash: hash}},
		{"パスワード未設定", &model.User{ID: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
					return tt.user, nil
				},
			}
			sessionRepo := &mockSessionRepo{
				createFn: func(ctx context.Context, session *model.Session) error {
					t.Fatal("session should not be created")
					return nil
				},
			}
			svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

			_, _, err := svc.Login(context.Background(), "a@example.com", "wrong-password")
			assertCode(t, err, model.ErrCodeInvalidCredentials)
		})
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	ctx := context.Background()

	var deletedSessionID string

	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedSessionID = id
			return nil
		},
	}

	svc := NewService(nil, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	if err := svc.Logout(ctx, "session-to-delete"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if deletedSessionID != "session-to-delete" {
		t.Errorf("deleted session ID = %q, want %q", deletedSessionID, "session-to-delete")
	}
}

func TestLogout_EmptySessionID_ReturnsError(t *testing.T) {
	svc := NewService(nil, nil, ServiceConfig{SessionMaxAge: 86400})

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestGetCurrentUser_ValidSession_ReturnsUser(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "user-id-123", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "user@example.com", Role: model.RoleUser, Plan: model.PlanPro}, nil
		},
	}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	user, err := svc.GetCurrentUser(context.Background(), "session-valid")
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if user.ID != "user-id-123" || user.Plan != model.PlanPro {
		t.Errorf("user = %+v", user)
	}
}

func TestGetCurrentUser_ExpiredOrMissingSession(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, err := svc.GetCurrentUser(context.Background(), "expired")
	assertCode(t, err, model.ErrCodeUnauthorized)

	_, err = svc.GetCurrentUser(context.Background(), "")
	assertCode(t, err, model.ErrCodeUnauthorized)
}

func TestHashPassword_UsesDefaultCost(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	// bcryptハッシュは "$2a$10$" のようにコストを含む
	if hash[4:6] != "10" {
		t.Errorf("cost = %s, want 10", hash[4:6])
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword should reject wrong password")
	}
	if CheckPassword("not-a-hash", "password123") {
		t.Error("CheckPassword should reject malformed hash")
	}
}
