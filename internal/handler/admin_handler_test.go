package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
)

func TestAdminHandler_Stats(t *testing.T) {
	svc := &mockAdminService{
		statsFn: func(ctx context.Context) (*model.AdminStats, error) {
			return &model.AdminStats{Users: 10, Newsletters: 42, Subscriptions: 3}, nil
		},
	}
	h := NewAdminHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), "admin-1")
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got adminStatsResponse
	decodeBody(t, w, &got)
	if got.Users != 10 || got.Newsletters != 42 || got.Subscriptions != 3 {
		t.Errorf("stats = %+v", got)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	svc := &mockAdminService{
		listUsersFn: func(ctx context.Context) ([]*model.UserSummary, error) {
			return []*model.UserSummary{{
				ID:              "user-1",
				Name:            "Alice",
				Email:           "alice@example.com",
				Role:            model.RoleUser,
				Plan:            model.PlanPro,
				NewsletterCount: 7,
				CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	}
	h := NewAdminHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), "admin-1")
	w := httptest.NewRecorder()
	h.ListUsers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []adminUserResponse
	decodeBody(t, w, &got)
	if len(got) != 1 || got[0].NewsletterCount != 7 || got[0].Plan != "PRO" {
		t.Errorf("users = %+v", got)
	}
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	var gotAdmin, gotUser string
	svc := &mockAdminService{
		deleteUserFn: func(ctx context.Context, adminID, userID string) error {
			gotAdmin, gotUser = adminID, userID
			return nil
		},
	}
	h := NewAdminHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/user-1", nil)
	req = withChiURLParam(req, "id", "user-1")
	req = withUserID(req, "admin-1")
	w := httptest.NewRecorder()
	h.DeleteUser(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotAdmin != "admin-1" || gotUser != "user-1" {
		t.Errorf("DeleteUser(%q, %q), want (admin-1, user-1)", gotAdmin, gotUser)
	}
}

func TestAdminHandler_DeleteUser_ValidationError(t *testing.T) {
	svc := &mockAdminService{
		deleteUserFn: func(ctx context.Context, adminID, userID string) error {
			return model.NewValidationError("User ID required")
		},
	}
	h := NewAdminHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/", nil)
	req = withChiURLParam(req, "id", "")
	req = withUserID(req, "admin-1")
	w := httptest.NewRecorder()
	h.DeleteUser(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"ok", nil, http.StatusOK, "ok"},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&mockPinger{err: tt.pingErr})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			h(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var got map[string]string
			decodeBody(t, w, &got)
			if got["status"] != tt.wantBody {
				t.Errorf("status field = %q, want %q", got["status"], tt.wantBody)
			}
		})
	}
}
