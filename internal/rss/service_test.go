package rss

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/newsletterai/internal/model"
)

// mockFeedRepo はRssFeedRepositoryのモック。
type mockFeedRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.RssFeed, error)
	countByUserIDFn func(ctx context.Context, userID string) (int, error)
	createFn        func(ctx context.Context, feed *model.RssFeed) error
	deleteFn        func(ctx context.Context, id string) error
}

func (m *mockFeedRepo) FindByID(ctx context.Context, id string) (*model.RssFeed, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockFeedRepo) ListByUserID(ctx context.Context, userID string) ([]*model.RssFeed, error) {
	return []*model.RssFeed{}, nil
}
func (m *mockFeedRepo) ListByIDsForUser(ctx context.Context, userID string, ids []string) ([]*model.RssFeed, error) {
	return nil, nil
}
func (m *mockFeedRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	return m.countByUserIDFn(ctx, userID)
}
func (m *mockFeedRepo) Create(ctx context.Context, feed *model.RssFeed) error {
	if m.createFn != nil {
		return m.createFn(ctx, feed)
	}
	feed.ID = "new-feed"
	return nil
}
func (m *mockFeedRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockUserFinder struct {
	user *model.User
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.user, nil
}

type mockProber struct {
	probeFn func(ctx context.Context, rawURL string) (*FeedInfo, error)
	calls   int
}

func (m *mockProber) Probe(ctx context.Context, rawURL string) (*FeedInfo, error) {
	m.calls++
	return m.probeFn(ctx, rawURL)
}

func okProber() *mockProber {
	return &mockProber{probeFn: func(_ context.Context, rawURL string) (*FeedInfo, error) {
		return &FeedInfo{URL: rawURL, Title: "Go Blog", Description: "News"}, nil
	}}
}

func assertAPIError(t *testing.T, err error, code string) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != code {
		t.Fatalf("Code = %q, want %q", apiErr.Code, code)
	}
	return apiErr
}

func TestService_AddFeed_Success(t *testing.T) {
	var created *model.RssFeed
	repo := &mockFeedRepo{
		countByUserIDFn: func(context.Context, string) (int, error) { return 0, nil },
		createFn: func(_ context.Context, f *model.RssFeed) error {
			created = f
			f.ID = "feed-1"
			return nil
		},
	}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{user: &model.User{ID: "u1", Plan: model.PlanFree}}, okProber(), newTestLogger(&buf))

	feed, err := svc.AddFeed(context.Background(), "u1", "  https://go.dev/blog/feed.atom ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.ID != "feed-1" || created.UserID != "u1" || created.Name != "Go Blog" || created.Description != "News" {
		t.Errorf("created = %+v", created)
	}
	if created.URL != "https://go.dev/blog/feed.atom" {
		t.Errorf("URL = %q", created.URL)
	}
}

// FREEプランで2件目のフィード追加は403（プラン上限）になることを検証
func TestService_AddFeed_FreePlanSecondFeedRejected(t *testing.T) {
	repo := &mockFeedRepo{countByUserIDFn: func(context.Context, string) (int, error) { return 1, nil }}
	prober := okProber()
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{user: &model.User{ID: "u1", Plan: model.PlanFree}}, prober, newTestLogger(&buf))

	_, err := svc.AddFeed(context.Background(), "u1", "https://example.com/feed")

	apiErr := assertAPIError(t, err, model.ErrCodePlanLimit)
	if !bytes.Contains([]byte(apiErr.Details), []byte("(1 feeds)")) {
		t.Errorf("Details = %q", apiErr.Details)
	}
	if prober.calls != 0 {
		t.Error("上限超過時はフィードを取得しないべき")
	}
}

// PROプランは件数に関係なく追加できることを検証
func TestService_AddFeed_ProPlanUnbounded(t *testing.T) {
	counted := false
	repo := &mockFeedRepo{countByUserIDFn: func(context.Context, string) (int, error) {
		counted = true
		return 1000, nil
	}}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{user: &model.User{ID: "u1", Plan: model.PlanPro}}, okProber(), newTestLogger(&buf))

	if _, err := svc.AddFeed(context.Background(), "u1", "https://example.com/feed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counted {
		t.Error("無制限プランでは件数を数える必要はない")
	}
}

func TestService_AddFeed_EmptyURL(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&mockFeedRepo{}, &mockUserFinder{}, okProber(), newTestLogger(&buf))

	_, err := svc.AddFeed(context.Background(), "u1", "   ")
	apiErr := assertAPIError(t, err, model.ErrCodeValidation)
	if apiErr.Message != "URL is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestService_AddFeed_InvalidFeed(t *testing.T) {
	repo := &mockFeedRepo{countByUserIDFn: func(context.Context, string) (int, error) { return 0, nil }}
	prober := &mockProber{probeFn: func(context.Context, string) (*FeedInfo, error) {
		return nil, errors.New("failed to parse feed: Failed to detect feed type")
	}}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{user: &model.User{ID: "u1", Plan: model.PlanFree}}, prober, newTestLogger(&buf))

	_, err := svc.AddFeed(context.Background(), "u1", "https://example.com/not-a-feed")
	apiErr := assertAPIError(t, err, model.ErrCodeInvalidFeed)
	if apiErr.Details == "" {
		t.Error("解析エラーの詳細をDetailsに含めるべき")
	}
}

func TestService_AddFeed_UntitledFeed(t *testing.T) {
	var created *model.RssFeed
	repo := &mockFeedRepo{
		countByUserIDFn: func(context.Context, string) (int, error) { return 0, nil },
		createFn: func(_ context.Context, f *model.RssFeed) error {
			created = f
			return nil
		},
	}
	prober := &mockProber{probeFn: func(_ context.Context, rawURL string) (*FeedInfo, error) {
		return &FeedInfo{URL: rawURL}, nil
	}}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{user: &model.User{ID: "u1"}}, prober, newTestLogger(&buf))

	if _, err := svc.AddFeed(context.Background(), "u1", "https://example.com/feed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Untitled Feed" {
		t.Errorf("Name = %q, want %q", created.Name, "Untitled Feed")
	}
}

// 他ユーザーのフィード削除は401になることを検証
func TestService_DeleteFeed_ForeignFeedUnauthorized(t *testing.T) {
	deleted := false
	repo := &mockFeedRepo{
		findByIDFn: func(context.Context, string) (*model.RssFeed, error) {
			return &model.RssFeed{ID: "f1", UserID: "other"}, nil
		},
		deleteFn: func(context.Context, string) error {
			deleted = true
			return nil
		},
	}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{}, okProber(), newTestLogger(&buf))

	err := svc.DeleteFeed(context.Background(), "u1", "f1")
	assertAPIError(t, err, model.ErrCodeUnauthorized)
	if deleted {
		t.Error("他ユーザーのフィードを削除してはならない")
	}
}

func TestService_DeleteFeed_MissingFeedUnauthorized(t *testing.T) {
	repo := &mockFeedRepo{findByIDFn: func(context.Context, string) (*model.RssFeed, error) { return nil, nil }}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{}, okProber(), newTestLogger(&buf))

	assertAPIError(t, svc.DeleteFeed(context.Background(), "u1", "missing"), model.ErrCodeUnauthorized)
}

func TestService_DeleteFeed_Owner(t *testing.T) {
	var deletedID string
	repo := &mockFeedRepo{
		findByIDFn: func(context.Context, string) (*model.RssFeed, error) {
			return &model.RssFeed{ID: "f1", UserID: "u1"}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	var buf bytes.Buffer
	svc := NewService(repo, &mockUserFinder{}, okProber(), newTestLogger(&buf))

	if err := svc.DeleteFeed(context.Background(), "u1", "f1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != "f1" {
		t.Errorf("deleted = %q", deletedID)
	}
}
