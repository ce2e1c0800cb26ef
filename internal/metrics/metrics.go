// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 結果ラベルの値
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordGenerationAttempt(model, outcome string)
	RecordGeneration(kind, outcome string)
	RecordGenerationLatency(kind string, duration time.Duration)
	RecordFeedFetch(outcome string)
	RecordFetchLatency(duration time.Duration)
	RecordEmail(outcome string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationAttempts *prometheus.CounterVec
	generations        *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec
	feedFetches        *prometheus.CounterVec
	fetchLatency       prometheus.Histogram
	emails             *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletterai_generation_attempts_total",
			Help: "モデル別のAI生成試行数",
		}, []string{"model", "outcome"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletterai_generations_total",
			Help: "種別ごとのニュースレター生成リクエスト数",
		}, []string{"kind", "outcome"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsletterai_generation_latency_seconds",
			Help:    "ニュースレター生成のレイテンシ（秒）",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"kind"}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletterai_feed_fetch_total",
			Help: "RSSフィード取得の結果別件数",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsletterai_feed_fetch_latency_seconds",
			Help:    "RSSフィード取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletterai_emails_total",
			Help: "メール配信の結果別件数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletterai_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.generationAttempts,
		c.generations,
		c.generationLatency,
		c.feedFetches,
		c.fetchLatency,
		c.emails,
		c.httpStatus,
	)

	return c
}

// RecordGenerationAttempt はモデル1回分の生成試行を記録する。
func (c *Collector) RecordGenerationAttempt(model, outcome string) {
	c.generationAttempts.WithLabelValues(model, outcome).Inc()
}

// RecordGeneration は生成リクエストの最終結果を記録する。
func (c *Collector) RecordGeneration(kind, outcome string) {
	c.generations.WithLabelValues(kind, outcome).Inc()
}

// RecordGenerationLatency は生成のレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(kind string, duration time.Duration) {
	c.generationLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFeedFetch はフィード取得結果を記録する。
func (c *Collector) RecordFeedFetch(outcome string) {
	c.feedFetches.WithLabelValues(outcome).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordEmail はメール配信結果を記録する。
func (c *Collector) RecordEmail(outcome string) {
	c.emails.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
