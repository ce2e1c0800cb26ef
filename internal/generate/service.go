// Package generate はAIによるニュースレター本文の生成を提供する。
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/newsletterai/internal/ai"
	"github.com/hitoshi/newsletterai/internal/metrics"
	"github.com/hitoshi/newsletterai/internal/model"
)

// 生成種別（メトリクスのラベル）
const (
	KindTopic   = "topic"
	KindDigest  = "digest"
	KindSuggest = "suggest"
)

// Generator はプロンプトから本文を生成するインターフェース。
// ai.Fallbackが実装する。
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FeedSource はユーザー所有のフィードを取得するインターフェース。
type FeedSource interface {
	ListByIDsForUser(ctx context.Context, userID string, ids []string) ([]*model.RssFeed, error)
}

// ArticleCollector は複数フィードから記事を集めるインターフェース。
type ArticleCollector interface {
	Collect(ctx context.Context, feeds []*model.RssFeed) []model.Article
}

// Recorder は生成結果を記録するインターフェース。
type Recorder interface {
	RecordGeneration(kind, outcome string)
	RecordGenerationLatency(kind string, duration time.Duration)
}

// Config は生成サービスの設定。
type Config struct {
	// Timeout は1回の生成処理全体の制限時間。0の場合は制限しない。
	Timeout time.Duration
}

// Dependencies は生成サービスの依存関係。
type Dependencies struct {
	Topic     Generator
	Digest    Generator
	Suggester ai.Client
	Feeds     FeedSource
	Articles  ArticleCollector
	Recorder  Recorder
	Logger    *slog.Logger
}

// Service はトピック生成・RSSダイジェスト生成・トピック提案を統括する。
type Service struct {
	deps Dependencies
	cfg  Config
}

// NewService は新しいServiceを生成する。
func NewService(deps Dependencies, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps, cfg: cfg}
}

// FromTopic はトピックからMarkdownのニュースレターを生成する。
func (s *Service) FromTopic(ctx context.Context, topic string, style Style) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", model.NewValidationError("Topic is required")
	}

	return s.run(ctx, KindTopic, s.deps.Topic, TopicPrompt(topic, style))
}

// FromFeeds は指定フィードの最新記事からダイジェストを生成する。
// 呼び出し元が所有していないフィードIDは無視する。
func (s *Service) FromFeeds(ctx context.Context, userID string, feedIDs []string, style Style) (string, error) {
	if len(feedIDs) == 0 {
		return "", model.NewValidationError("At least one feed must be selected")
	}

	feeds, err := s.deps.Feeds.ListByIDsForUser(ctx, userID, feedIDs)
	if err != nil {
		return "", fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	if len(feeds) == 0 {
		return "", model.NewValidationError("No valid feeds found")
	}

	articles := s.deps.Articles.Collect(ctx, feeds)
	if len(articles) == 0 {
		s.record(KindDigest, metrics.OutcomeEmpty)
		return "", model.NewNoArticlesError()
	}

	s.deps.Logger.Info("collected articles for digest",
		slog.String("user_id", userID),
		slog.Int("feeds", len(feeds)),
		slog.Int("articles", len(articles)),
	)

	return s.run(ctx, KindDigest, s.deps.Digest, DigestPrompt(articles, style))
}

// Suggest は現在のトピックをもとにトピック候補を提案する。
// 応答を解釈できない場合は空スライスを返す。
func (s *Service) Suggest(ctx context.Context, currentTopic string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	text, err := s.deps.Suggester.Complete(ctx, ai.Request{
		Model:  ai.SuggestModel,
		Prompt: SuggestPrompt(currentTopic),
		JSON:   true,
	})
	s.observe(KindSuggest, start)
	if err != nil {
		s.record(KindSuggest, metrics.OutcomeFailure)
		return nil, model.NewGenerationFailedError(err.Error())
	}

	suggestions := parseSuggestions(text)
	if len(suggestions) == 0 {
		s.deps.Logger.Warn("トピック候補を解釈できませんでした", slog.Int("length", len(text)))
		s.record(KindSuggest, metrics.OutcomeEmpty)
	} else {
		s.record(KindSuggest, metrics.OutcomeSuccess)
	}
	return suggestions, nil
}

// run はフォールバック付きの生成を実行し、失敗をAPIErrorに変換する。
func (s *Service) run(ctx context.Context, kind string, gen Generator, prompt string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	text, err := gen.Generate(ctx, prompt)
	s.observe(kind, start)
	if err != nil {
		s.record(kind, metrics.OutcomeFailure)
		s.deps.Logger.Error("AI生成に失敗しました",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return "", model.NewGenerationFailedError(generationDetails(err))
	}

	s.record(kind, metrics.OutcomeSuccess)
	return text, nil
}

// generationDetails はレスポンスに含める失敗理由を返す。
func generationDetails(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "generation timed out"
	}
	return err.Error()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) record(kind, outcome string) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordGeneration(kind, outcome)
	}
}

func (s *Service) observe(kind string, start time.Time) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordGenerationLatency(kind, time.Since(start))
	}
}
