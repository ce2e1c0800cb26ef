// Package notification はユーザー通知の作成と既読管理を提供する。
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/repository"
)

// ListLimit は一覧取得時の最大件数。
const ListLimit = 50

// Service は通知のサービス層。
type Service struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(repo repository.NotificationRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Notify は通知を作成する。
// 他の操作の副作用として呼ばれるため、失敗してもエラーは返さずログに記録するのみ。
func (s *Service) Notify(ctx context.Context, userID, title, message string, typ model.NotificationType) {
	n := &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("通知の作成に失敗しました",
			slog.String("user_id", userID),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
	}
}

// List はユーザーの通知を新しい順に返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	list, err := s.repo.ListByUserID(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("通知の取得に失敗しました: %w", err)
	}
	return list, nil
}

// MarkRead は通知を既読にする。他ユーザーの通知や存在しない通知はUnauthorizedを返す。
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("通知の更新に失敗しました: %w", err)
	}
	if !ok {
		return model.NewUnauthorizedError()
	}
	return nil
}

// MarkAllRead はユーザーの未読通知をすべて既読にし、更新件数を返す。
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("通知の更新に失敗しました: %w", err)
	}
	return n, nil
}
