package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/newsletterai/internal/model"
)

// AdminServiceInterface は管理ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	Stats(ctx context.Context) (*model.AdminStats, error)
	ListUsers(ctx context.Context) ([]*model.UserSummary, error)
	DeleteUser(ctx context.Context, adminID, userID string) error
}

// AdminHandler は管理画面のHTTPハンドラー。
// ADMINロールの確認はmiddleware.NewAdminMiddlewareが行う。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// Stats は全体の集計値を返す。
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminStatsResponse{
		Users:         stats.Users,
		Newsletters:   stats.Newsletters,
		Subscriptions: stats.Subscriptions,
	})
}

// ListUsers は全ユーザーをニュースレター件数付きで返す。
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(users, toAdminUserResponse))
}

// DeleteUser はユーザーを削除する。
// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), adminID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w)
}
