package rss

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/newsletterai/internal/metrics"
	"github.com/hitoshi/newsletterai/internal/model"
)

// ArticleSource は1フィード分の記事を取得するインターフェース。
type ArticleSource interface {
	FetchArticles(ctx context.Context, feed *model.RssFeed) ([]model.Article, error)
}

// FetchRecorder はフィード取得結果を記録するインターフェース。
type FetchRecorder interface {
	RecordFeedFetch(outcome string)
	RecordFetchLatency(duration time.Duration)
}

// FeedArticleSource はFetcherで取得したフィードから記事を取り出すArticleSource実装。
type FeedArticleSource struct {
	fetcher  *Fetcher
	stripper TagStripper
}

// NewFeedArticleSource はFeedArticleSourceを生成する。
func NewFeedArticleSource(fetcher *Fetcher, stripper TagStripper) *FeedArticleSource {
	return &FeedArticleSource{fetcher: fetcher, stripper: stripper}
}

// FetchArticles はフィードを取得し、最新記事を正規化して返す。記事名の出典はフィード名。
func (s *FeedArticleSource) FetchArticles(ctx context.Context, feed *model.RssFeed) ([]model.Article, error) {
	parsed, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return nil, err
	}
	return ExtractArticles(parsed, feed.Name, s.stripper), nil
}

// Collector は複数フィードの記事を並列に集める。
// 取得・解析に失敗したフィードはログを出してスキップする。
type Collector struct {
	source         ArticleSource
	maxConcurrency int
	logger         *slog.Logger
	recorder       FetchRecorder
}

// NewCollector はCollectorを生成する。maxConcurrencyが1未満の場合は1として扱う。
// recorderはnilでもよい。
func NewCollector(source ArticleSource, maxConcurrency int, logger *slog.Logger, recorder FetchRecorder) *Collector {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Collector{
		source:         source,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		recorder:       recorder,
	}
}

// Collect は全フィードの記事を取得し、feedsの順序で連結して返す。
// 並列に取得しても結果の並びは入力順に固定される。
func (c *Collector) Collect(ctx context.Context, feeds []*model.RssFeed) []model.Article {
	results := make([][]model.Article, len(feeds))

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup

	for i, feed := range feeds {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, feed *model.RssFeed) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = c.collectOne(ctx, feed)
		}(i, feed)
	}

	wg.Wait()

	var articles []model.Article
	for _, r := range results {
		articles = append(articles, r...)
	}
	return articles
}

func (c *Collector) collectOne(ctx context.Context, feed *model.RssFeed) []model.Article {
	start := time.Now()
	articles, err := c.source.FetchArticles(ctx, feed)
	duration := time.Since(start)

	if c.recorder != nil {
		c.recorder.RecordFetchLatency(duration)
	}

	if err != nil {
		c.record(metrics.OutcomeFailure)
		c.logger.Warn("フィードの取得に失敗したためスキップします",
			slog.String("feed_id", feed.ID),
			slog.String("url", feed.URL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if len(articles) == 0 {
		c.record(metrics.OutcomeEmpty)
	} else {
		c.record(metrics.OutcomeSuccess)
	}
	c.logger.Info("フィードを取得しました",
		slog.String("feed_id", feed.ID),
		slog.Int("articles", len(articles)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	return articles
}

func (c *Collector) record(outcome string) {
	if c.recorder != nil {
		c.recorder.RecordFeedFetch(outcome)
	}
}
