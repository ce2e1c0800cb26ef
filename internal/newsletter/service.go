// Package newsletter はニュースレターのライフサイクル管理を提供する。
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/hitoshi/newsletterai/internal/plan"
	"github.com/hitoshi/newsletterai/internal/repository"
)

// UserFinder はユーザー取得のインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Sender はニュースレターをメール配信するインターフェース。
type Sender interface {
	SendNewsletter(ctx context.Context, to string, n *model.Newsletter) error
}

// Notifier は通知を作成するインターフェース。失敗は呼び出し元に返さない。
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ model.NotificationType)
}

// CreateInput はニュースレター作成の入力。
type CreateInput struct {
	Title   string
	Topic   string
	Content string
	Status  model.NewsletterStatus
}

// UpdateInput はニュースレター更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title   *string
	Topic   *string
	Content *string
	Status  *model.NewsletterStatus
}

// Service はニュースレターのサービス層。
// 所有者チェック、月間作成数の上限、状態遷移、送信時のメール配信を扱う。
type Service struct {
	repo     repository.NewsletterRepository
	users    UserFinder
	sender   Sender
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService は新しいServiceを生成する。
func NewService(
	repo repository.NewsletterRepository,
	users UserFinder,
	sender Sender,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sender:   sender,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// monthStart はtを含む月の初日0時（UTC）を返す。
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Create はニュースレターを保存する。
// 保存前に月間作成数の上限を確認し、保存後に通知を作成する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Newsletter, error) {
	if isBlank(in.Title) || isBlank(in.Topic) || isBlank(in.Content) {
		return nil, model.NewValidationError("Missing required fields")
	}

	status := in.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid status: %s", status))
	}
	// SENTへの遷移はメール配信を伴うため、更新経由でのみ許可する
	if status == model.StatusSent {
		return nil, model.NewValidationError("A newsletter must be saved before it can be sent")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError("User not found")
	}

	limit := plan.GetLimits(string(user.Plan)).NewslettersPerMonth
	if !limit.IsUnlimited() {
		count, err := s.repo.CountByUserSince(ctx, userID, monthStart(s.now()))
		if err != nil {
			return nil, fmt.Errorf("今月の作成数の確認に失敗しました: %w", err)
		}
		if !limit.Allows(count) {
			return nil, model.NewPlanLimitError(plan.Normalize(string(user.Plan)), limit.Value())
		}
	}

	n := &model.Newsletter{
		UserID:  userID,
		Title:   in.Title,
		Topic:   in.Topic,
		Content: in.Content,
		Status:  status,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.notifySaved(ctx, n)

	return n, nil
}

func (s *Service) notifySaved(ctx context.Context, n *model.Newsletter) {
	if s.notifier == nil {
		return
	}
	if n.Status == model.StatusCompleted {
		s.notifier.Notify(ctx, n.UserID, "Newsletter Published",
			fmt.Sprintf("Your newsletter %q has been successfully published.", n.Title),
			model.NotificationSuccess)
		return
	}
	s.notifier.Notify(ctx, n.UserID, "Newsletter Saved",
		fmt.Sprintf("Your newsletter %q has been successfully saved as draft.", n.Title),
		model.NotificationInfo)
}

// List はユーザーのニュースレターを新しい順に返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Newsletter, error) {
	list, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Get はユーザー所有のニュースレターを返す。
// 存在しない場合と他ユーザー所有の場合は区別せずUnauthorizedを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Newsletter, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != userID {
		return nil, model.NewUnauthorizedError()
	}
	return n, nil
}

// Update はニュースレターを更新する。
// SENTへ遷移する場合は保存前にメールを配信し、配信に失敗したら状態を変更せずエラーを返す。
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*model.Newsletter, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Topic != nil {
		next.Topic = *in.Topic
	}
	if in.Content != nil {
		next.Content = *in.Content
	}
	if isBlank(next.Title) || isBlank(next.Topic) || isBlank(next.Content) {
		return nil, model.NewValidationError("Missing required fields")
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("Invalid status: %s", *in.Status))
		}
		if !current.Status.CanTransitionTo(*in.Status) {
			return nil, model.NewInvalidTransitionError(current.Status, *in.Status)
		}
		next.Status = *in.Status
	}

	if next.Status == model.StatusSent && current.Status != model.StatusSent {
		if err := s.dispatch(ctx, userID, &next); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// dispatch はニュースレターを所有者のメールアドレスに配信する。
func (s *Service) dispatch(ctx context.Context, userID string, n *model.Newsletter) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUnauthorizedError()
	}

	if err := s.sender.SendNewsletter(ctx, user.Email, n); err != nil {
		s.logger.Error("ニュースレターの配信に失敗しました",
			slog.String("newsletter_id", n.ID),
			slog.String("error", err.Error()),
		)
		return model.NewEmailDispatchError(err.Error())
	}
	return nil
}

// Delete はユーザー所有のニュースレターを削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
