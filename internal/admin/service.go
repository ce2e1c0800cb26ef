// Package admin は管理者向けの集計とユーザー管理を提供する。
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/repository"
)

// UserDeleter はユーザー削除のインターフェース。
type UserDeleter interface {
	DeleteByID(ctx context.Context, id string) error
}

// Service は管理画面のサービス層。権限チェックは呼び出し側のミドルウェアで行う。
type Service struct {
	repo   repository.AdminRepository
	users  UserDeleter
	logger *slog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(repo repository.AdminRepository, users UserDeleter, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

// Stats はユーザー数、ニュースレター数、有料プラン利用者数を返す。
func (s *Service) Stats(ctx context.Context) (*model.AdminStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("集計に失敗しました: %w", err)
	}
	return stats, nil
}

// ListUsers は全ユーザーを新しい順に返す。
func (s *Service) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	users, err := s.repo.ListUsersWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// DeleteUser は指定ユーザーを削除する。所有データはCASCADE削除される。
func (s *Service) DeleteUser(ctx context.Context, adminID, userID string) error {
	if userID == "" {
		return model.NewValidationError("User ID required")
	}
	if err := s.users.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	s.logger.Info("user deleted by admin",
		slog.String("admin_id", adminID),
		slog.String("user_id", userID),
	)
	return nil
}
