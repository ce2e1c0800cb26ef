package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/newsletterai/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// Withdraw はユーザーを削除する。所有データはCASCADEで削除される。
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	cookies   AuthHandlerConfig
	validator RequestValidator
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, cookies AuthHandlerConfig, validator RequestValidator) *UserHandler {
	return &UserHandler{
		service:   service,
		cookies:   cookies,
		validator: validator,
	}
}

// updateProfileRequest はプロフィール更新リクエスト。省略したフィールドは変更しない。
type updateProfileRequest struct {
	Name                  *string `json:"name" validate:"omitnil,max=100"`
	Image                 *string `json:"image" validate:"omitnil,max=2048"`
	NewsletterName        *string `json:"newsletterName" validate:"omitnil,max=200"`
	NewsletterDescription *string `json:"newsletterDescription" validate:"omitnil,max=2000"`
	TargetAudience        *string `json:"targetAudience" validate:"omitnil,max=500"`
	DefaultTone           *string `json:"defaultTone" validate:"omitnil,max=100"`
	CompanyName           *string `json:"companyName" validate:"omitnil,max=200"`
	Industry              *string `json:"industry" validate:"omitnil,max=200"`
	LegalDisclaimer       *string `json:"legalDisclaimer" validate:"omitnil,max=5000"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"max=72"`
}

// UpdateProfile はプロフィールとブランディング設定を更新する。
// PATCH /api/user/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, model.ProfileUpdate{
		Name:                  req.Name,
		Image:                 req.Image,
		NewsletterName:        req.NewsletterName,
		NewsletterDescription: req.NewsletterDescription,
		TargetAudience:        req.TargetAudience,
		DefaultTone:           req.DefaultTone,
		CompanyName:           req.CompanyName,
		Industry:              req.Industry,
		LegalDisclaimer:       req.LegalDisclaimer,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePassword はパスワードを変更する。
// POST /api/user/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// Withdraw はアカウントを削除し、セッションCookieをクリアする。
// DELETE /api/user
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookies.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w)
}
