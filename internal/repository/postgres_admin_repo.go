package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsletterai/internal/model"
)

// PostgresAdminRepo はPostgreSQLを使用した管理画面向け集計リポジトリ。
type PostgresAdminRepo struct {
	db *sql.DB
}

// NewPostgresAdminRepo はPostgresAdminRepoを生成する。
func NewPostgresAdminRepo(db *sql.DB) *PostgresAdminRepo {
	return &PostgresAdminRepo{db: db}
}

// Stats はユーザー数・ニュースレター数・FREE以外のユーザー数を返す。
func (r *PostgresAdminRepo) Stats(ctx context.Context) (*model.AdminStats, error) {
	stats := &model.AdminStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM newsletters),
			(SELECT COUNT(*) FROM users WHERE plan <> $1)`,
		model.PlanFree,
	).Scan(&stats.Users, &stats.Newsletters, &stats.Subscriptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin stats: %w", err)
	}
	return stats, nil
}

// ListUsersWithCounts は全ユーザーをニュースレター数付きで作成日時の降順に返す。
func (r *PostgresAdminRepo) ListUsersWithCounts(ctx context.Context) ([]*model.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.plan, COUNT(n.id), u.created_at
		 FROM users u
		 LEFT JOIN newsletters n ON n.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*model.UserSummary{}
	for rows.Next() {
		u := &model.UserSummary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Plan, &u.NewsletterCount, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// compile-time interface check
var _ AdminRepository = (*PostgresAdminRepo)(nil)
