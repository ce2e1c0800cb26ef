package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout は1回のクリーンアップ実行に許す最大時間。
const jobTimeout = 5 * time.Minute

// Scheduler はcron式に従ってCleanupJobを定期実行する。
type Scheduler struct {
	cron   *cron.Cron
	job    *CleanupJob
	logger *slog.Logger
}

// NewScheduler はスケジュール式を検証してSchedulerを生成する。
// 式は5フィールドの標準形式か、@dailyなどの記述子を受け付ける。
func NewScheduler(schedule string, job *CleanupJob, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		cron:   cron.New(),
		job:    job,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("failed to register cleanup job: %w", err)
	}
	return s, nil
}

// Start はバックグラウンドでスケジューラーを開始する。
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cleanup scheduler started")
}

// Stop はスケジューラーを停止し、実行中のジョブの完了を待つ。
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("cleanup scheduler stop timed out")
	}
}

// runOnce はタイムアウト付きでジョブを1回実行する。エラーはログのみ。
func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.job.Run(ctx); err != nil {
		s.logger.Error("cleanup run failed", slog.String("error", err.Error()))
	}
}
