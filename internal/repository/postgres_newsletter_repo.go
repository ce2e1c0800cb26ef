package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newsletterai/internal/model"
)

// PostgresNewsletterRepo はPostgreSQLを使用したニュースレターリポジトリ。
type PostgresNewsletterRepo struct {
	db *sql.DB
}

// NewPostgresNewsletterRepo はPostgresNewsletterRepoを生成する。
func NewPostgresNewsletterRepo(db *sql.DB) *PostgresNewsletterRepo {
	return &PostgresNewsletterRepo{db: db}
}

// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
func (r *PostgresNewsletterRepo) FindByID(ctx context.Context, id string) (*model.Newsletter, error) {
	if !validID(id) {
		return nil, nil
	}

	n := &model.Newsletter{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, topic, content, status, created_at, updated_at
		 FROM newsletters WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Topic, &n.Content, &n.Status, &n.CreatedAt, &n.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}

	return n, nil
}

// ListByUserID はユーザーのニュースレターを作成日時の降順で返す。
func (r *PostgresNewsletterRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Newsletter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, topic, content, status, created_at, updated_at
		 FROM newsletters WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	newsletters := []*model.Newsletter{}
	for rows.Next() {
		n := &model.Newsletter{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Topic, &n.Content, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ニュースレター行の読み取りに失敗しました: %w", err)
		}
		newsletters = append(newsletters, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の走査に失敗しました: %w", err)
	}
	return newsletters, nil
}

// CountByUserSince はsince以降に作成されたユーザーのニュースレター数を返す。
func (r *PostgresNewsletterRepo) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM newsletters WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ニュースレター数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Create はニュースレターを作成する。
func (r *PostgresNewsletterRepo) Create(ctx context.Context, n *model.Newsletter) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO newsletters (user_id, title, topic, content, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		n.UserID, n.Title, n.Topic, n.Content, n.Status,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ニュースレターの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はタイトル・本文・状態を更新する。
func (r *PostgresNewsletterRepo) Update(ctx context.Context, n *model.Newsletter) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE newsletters SET title = $2, topic = $3, content = $4, status = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		n.ID, n.Title, n.Topic, n.Content, n.Status,
	).Scan(&n.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("ニュースレターが見つかりません: %s", n.ID)
	}
	if err != nil {
		return fmt.Errorf("ニュースレターの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのニュースレターを削除する。
func (r *PostgresNewsletterRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM newsletters WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ニュースレターの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ニュースレターが見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ NewsletterRepository = (*PostgresNewsletterRepo)(nil)
