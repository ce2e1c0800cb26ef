package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/newsletterai/internal/model"
)

// PostgresRssFeedRepo はPostgreSQLを使用したRSSフィードリポジトリ。
type PostgresRssFeedRepo struct {
	db *sql.DB
}

// NewPostgresRssFeedRepo はPostgresRssFeedRepoを生成する。
func NewPostgresRssFeedRepo(db *sql.DB) *PostgresRssFeedRepo {
	return &PostgresRssFeedRepo{db: db}
}

// FindByID は指定IDのフィードを取得する。見つからない場合はnilを返す。
func (r *PostgresRssFeedRepo) FindByID(ctx context.Context, id string) (*model.RssFeed, error) {
	if !validID(id) {
		return nil, nil
	}

	f := &model.RssFeed{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, url, name, description, created_at FROM rss_feeds WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.UserID, &f.URL, &f.Name, &f.Description, &f.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rss feed by ID: %w", err)
	}

	return f, nil
}

// ListByUserID はユーザーのフィードを作成日時の降順で返す。
func (r *PostgresRssFeedRepo) ListByUserID(ctx context.Context, userID string) ([]*model.RssFeed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, url, name, description, created_at
		 FROM rss_feeds WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rss feeds: %w", err)
	}
	return scanFeeds(rows)
}

// ListByIDsForUser は指定IDのうちユーザーが所有するフィードを、idsの順序で返す。
// 他ユーザーのフィードや存在しないIDは黙って除外する。
func (r *PostgresRssFeedRepo) ListByIDsForUser(ctx context.Context, userID string, ids []string) ([]*model.RssFeed, error) {
	valid := filterValidIDs(ids)
	if len(valid) == 0 {
		return []*model.RssFeed{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, url, name, description, created_at
		 FROM rss_feeds WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(valid),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rss feeds by IDs: %w", err)
	}
	found, err := scanFeeds(rows)
	if err != nil {
		return nil, err
	}

	return orderFeedsByIDs(found, ids), nil
}

// orderFeedsByIDs はfeedsをidsの順序に並べ替える。重複IDは1回だけ含める。
func orderFeedsByIDs(feeds []*model.RssFeed, ids []string) []*model.RssFeed {
	byID := make(map[string]*model.RssFeed, len(feeds))
	for _, f := range feeds {
		byID[f.ID] = f
	}

	ordered := make([]*model.RssFeed, 0, len(feeds))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
			delete(byID, id)
		}
	}
	return ordered
}

// CountByUserID はユーザーのフィード登録数を返す。
func (r *PostgresRssFeedRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rss_feeds WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rss feeds: %w", err)
	}
	return count, nil
}

// Create はフィードを作成する。
func (r *PostgresRssFeedRepo) Create(ctx context.Context, f *model.RssFeed) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO rss_feeds (user_id, url, name, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		f.UserID, f.URL, f.Name, f.Description,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rss feed: %w", err)
	}
	return nil
}

// Delete は指定IDのフィードを削除する。
func (r *PostgresRssFeedRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM rss_feeds WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete rss feed: %w", err)
	}
	return nil
}

func scanFeeds(rows *sql.Rows) ([]*model.RssFeed, error) {
	defer rows.Close()

	feeds := []*model.RssFeed{}
	for rows.Next() {
		f := &model.RssFeed{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.URL, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rss feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rss feeds: %w", err)
	}
	return feeds, nil
}

// compile-time interface check
var _ RssFeedRepository = (*PostgresRssFeedRepo)(nil)
