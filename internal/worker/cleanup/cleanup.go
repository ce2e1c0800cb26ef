// Package cleanup は期限切れデータの定期削除ジョブを提供する。
// 期限切れセッションと、保持期間を超えた既読通知を削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// DefaultNotificationRetentionDays は既読通知の保持日数のデフォルト値。
const DefaultNotificationRetentionDays = 30

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Result は1回の実行で削除した件数。
type Result struct {
	Sessions      int64
	Notifications int64
}

// CleanupJob は期限切れデータの削除ジョブ。
// 何度実行しても同じ結果になる。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	RetentionDays int // 既読通知の保持日数
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		RetentionDays: DefaultNotificationRetentionDays,
	}
}

// Run は期限切れセッションと保持期間を超えた既読通知を削除する。
// 未読の通知は保持期間に関係なく残す。
func (j *CleanupJob) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	sessions, err := j.exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		j.logger.Error("failed to delete expired sessions",
			slog.String("error", err.Error()),
		)
		return res, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	res.Sessions = sessions

	interval := fmt.Sprintf("%d days", j.RetentionDays)
	notifications, err := j.exec(ctx,
		`DELETE FROM notifications WHERE is_read = true AND created_at < now() - $1::interval`,
		interval,
	)
	if err != nil {
		j.logger.Error("failed to delete read notifications",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return res, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	res.Notifications = notifications

	j.logger.Info("cleanup job completed",
		slog.Int64("deleted_sessions", res.Sessions),
		slog.Int64("deleted_notifications", res.Notifications),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return res, nil
}

func (j *CleanupJob) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
