// Package user はプロフィール更新、パスワード変更、退会を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsletterai/internal/auth"
	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/repository"
)

// Notifier は通知を作成するインターフェース。失敗は呼び出し元に返さない。
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ model.NotificationType)
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	notifier    Notifier
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	notifier Notifier,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		notifier:    notifier,
	}
}

// UpdateProfile はプロフィールとブランディング設定を更新し、通知を作成する。
func (s *Service) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError("User not found")
	}

	s.notify(ctx, userID, "Profile Updated",
		"Your profile information has been successfully updated.", model.NotificationInfo)

	return user, nil
}

// ChangePassword は現在のパスワードを確認した上でパスワードを変更する。
// パスワード未設定のアカウントは変更できない。
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return model.NewValidationError("Missing fields")
	}
	if len(newPassword) < auth.MinPasswordLength {
		return model.NewValidationError(fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil || !user.HasPassword() {
		return model.NewUserNotFoundError("User not found or no password set")
	}

	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return model.NewIncorrectPasswordError()
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("パスワードの更新に失敗しました: %w", err)
	}

	slog.Info("password changed", slog.String("user_id", userID))

	s.notify(ctx, userID, "Password Changed",
		"Your account password has been successfully updated.", model.NotificationWarning)

	return nil
}

// Withdraw はユーザーを削除する。
// newsletters、rss_feeds、notificationsはCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError("User not found")
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}

func (s *Service) notify(ctx context.Context, userID, title, message string, typ model.NotificationType) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, title, message, typ)
	}
}
