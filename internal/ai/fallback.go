package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/newsletterai/internal/metrics"
)

// ErrAllModelsFailed は全モデルが空の応答を返した場合のエラー。
var ErrAllModelsFailed = errors.New("all models failed to generate content")

// 生成に使用するモデル順序
var (
	TopicModels  = []string{"gemini-2.5-flash-lite", "gemini-flash-latest"}
	DigestModels = []string{"gemini-2.5-flash-lite", "gemini-2.0-flash-lite", "gemini-flash-latest"}
	SuggestModel = "gemini-2.5-flash-lite"
)

// AttemptRecorder はモデル試行の結果を記録するインターフェース。
type AttemptRecorder interface {
	RecordGenerationAttempt(model, outcome string)
}

// Fallback はモデルを順に試し、最初に得られた空でない応答を返す。
type Fallback struct {
	client   Client
	models   []string
	logger   *slog.Logger
	recorder AttemptRecorder
}

// NewFallback は新しいFallbackを生成する。recorderはnilでもよい。
func NewFallback(client Client, models []string, logger *slog.Logger, recorder AttemptRecorder) *Fallback {
	return &Fallback{
		client:   client,
		models:   models,
		logger:   logger,
		recorder: recorder,
	}
}

// Models は試行順のモデル名を返す。
func (f *Fallback) Models() []string {
	return append([]string(nil), f.models...)
}

// Generate はモデルを順番に呼び出す。
// 空でない応答が得られた時点で以降のモデルは呼び出さない。
// 全モデルが失敗した場合は最後に発生したエラーを、エラーがなければErrAllModelsFailedを返す。
func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, model := range f.models {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := f.client.Complete(ctx, Request{Model: model, Prompt: prompt})
		if err != nil {
			lastErr = fmt.Errorf("model %s: %w", model, err)
			f.record(model, metrics.OutcomeFailure)
			f.logger.Warn("AI生成に失敗しました。次のモデルを試行します",
				slog.String("model", model),
				slog.String("error", err.Error()),
			)
			continue
		}

		if strings.TrimSpace(text) == "" {
			f.record(model, metrics.OutcomeEmpty)
			f.logger.Warn("AIモデルが空の応答を返しました",
				slog.String("model", model),
			)
			continue
		}

		f.record(model, metrics.OutcomeSuccess)
		f.logger.Info("AI生成に成功しました",
			slog.String("model", model),
			slog.Int("length", len(text)),
		)
		return text, nil
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrAllModelsFailed
}

func (f *Fallback) record(model, outcome string) {
	if f.recorder != nil {
		f.recorder.RecordGenerationAttempt(model, outcome)
	}
}
