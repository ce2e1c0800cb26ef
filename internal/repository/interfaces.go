// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字不問）でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDとタイムスタンプをuserに設定する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はnilでないフィールドのみ更新し、更新後のユーザーを返す。
	// 対象が存在しない場合はnilを返す。
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)

	// UpdatePassword はパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdatePlan はプランとStripe顧客IDを更新する。customerIDが空の場合は顧客IDを変更しない。
	UpdatePlan(ctx context.Context, id string, plan model.Plan, customerID string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、newsletters、rss_feeds、notificationsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// NewsletterRepository はニュースレターの永続化インターフェース。
type NewsletterRepository interface {
	// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Newsletter, error)

	// ListByUserID はユーザーのニュースレターを作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Newsletter, error)

	// CountByUserSince はsince以降に作成されたユーザーのニュースレター数を返す。
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)

	// Create はニュースレターを作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, newsletter *model.Newsletter) error

	// Update はタイトル、トピック、本文、状態を更新する。
	Update(ctx context.Context, newsletter *model.Newsletter) error

	// Delete は指定IDのニュースレターを削除する。
	Delete(ctx context.Context, id string) error
}

// RssFeedRepository はRSSフィード登録の永続化インターフェース。
type RssFeedRepository interface {
	// FindByID は指定IDのフィードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.RssFeed, error)

	// ListByUserID はユーザーのフィードを作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.RssFeed, error)

	// ListByIDsForUser は指定IDのうちユーザーが所有するフィードのみを、
	// idsの順序を保って返す。
	ListByIDsForUser(ctx context.Context, userID string, ids []string) ([]*model.RssFeed, error)

	// CountByUserID はユーザーのフィード登録数を返す。
	CountByUserID(ctx context.Context, userID string) (int, error)

	// Create はフィードを作成する。
	Create(ctx context.Context, feed *model.RssFeed) error

	// Delete は指定IDのフィードを削除する。
	Delete(ctx context.Context, id string) error
}

// NotificationRepository は通知の永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成する。
	Create(ctx context.Context, n *model.Notification) error

	// ListByUserID はユーザーの通知を新しい順に最大limit件返す。
	ListByUserID(ctx context.Context, userID string, limit int) ([]*model.Notification, error)

	// MarkRead はユーザー所有の通知を既読にする。対象がなければfalseを返す。
	MarkRead(ctx context.Context, userID, id string) (bool, error)

	// MarkAllRead はユーザーの全通知を既読にし、更新件数を返す。
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// AdminRepository は管理画面向けの集計クエリのインターフェース。
type AdminRepository interface {
	// Stats はユーザー数・ニュースレター数・有料購読数を返す。
	Stats(ctx context.Context) (*model.AdminStats, error)

	// ListUsersWithCounts は全ユーザーを作成日時の降順で、ニュースレター数付きで返す。
	ListUsersWithCounts(ctx context.Context) ([]*model.UserSummary, error)
}
