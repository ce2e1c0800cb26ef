package rss

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/plan"
	"github.com/hitoshi/newsletterai/internal/repository"
)

const untitledFeed = "Untitled Feed"

// FeedProber はフィードURLを検証するインターフェース。
type FeedProber interface {
	Probe(ctx context.Context, rawURL string) (*FeedInfo, error)
}

// UserFinder はユーザー取得のインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Service はRSSフィード登録の管理を行う。
type Service struct {
	feedRepo repository.RssFeedRepository
	userRepo UserFinder
	prober   FeedProber
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(feedRepo repository.RssFeedRepository, userRepo UserFinder, prober FeedProber, logger *slog.Logger) *Service {
	return &Service{
		feedRepo: feedRepo,
		userRepo: userRepo,
		prober:   prober,
		logger:   logger,
	}
}

// ListFeeds はユーザーのフィードを新しい順に返す。
func (s *Service) ListFeeds(ctx context.Context, userID string) ([]*model.RssFeed, error) {
	feeds, err := s.feedRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	return feeds, nil
}

// AddFeed はプラン上限を確認した後、URLを取得・解析して検証し、フィードを登録する。
// 名前と説明は解析したフィードのタイトルと説明を使う。
func (s *Service) AddFeed(ctx context.Context, userID, rawURL string) (*model.RssFeed, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, model.NewValidationError("URL is required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	limit := plan.GetLimits(string(user.Plan)).MaxRssFeeds
	if !limit.IsUnlimited() {
		count, err := s.feedRepo.CountByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count feeds: %w", err)
		}
		if !limit.Allows(count) {
			return nil, model.NewFeedLimitError(plan.Normalize(string(user.Plan)), limit.Value())
		}
	}

	info, err := s.prober.Probe(ctx, rawURL)
	if err != nil {
		s.logger.Warn("フィードの検証に失敗しました",
			slog.String("user_id", userID),
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidFeedError(err.Error())
	}

	name := strings.TrimSpace(info.Title)
	if name == "" {
		name = untitledFeed
	}

	feed := &model.RssFeed{
		UserID:      userID,
		URL:         info.URL,
		Name:        name,
		Description: strings.TrimSpace(info.Description),
	}
	if err := s.feedRepo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	s.logger.Info("フィードを登録しました",
		slog.String("user_id", userID),
		slog.String("feed_id", feed.ID),
		slog.String("url", feed.URL),
	)
	return feed, nil
}

// DeleteFeed はユーザーが所有するフィードを削除する。
// 存在しない、または他ユーザーのフィードの場合はUnauthorizedを返す。
func (s *Service) DeleteFeed(ctx context.Context, userID, feedID string) error {
	feed, err := s.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return fmt.Errorf("failed to find feed: %w", err)
	}
	if feed == nil || feed.UserID != userID {
		return model.NewUnauthorizedError()
	}

	if err := s.feedRepo.Delete(ctx, feedID); err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}
	return nil
}
