// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordCoachReply(topic string)
	RecordAuthAttempt(provider string, success bool)
	RecordCleanupDeleted(kind string, count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	coachReplies   *prometheus.CounterVec
	authAttempts   *prometheus.CounterVec
	cleanupDeleted *prometheus.CounterVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricoach_http_requests_total",
			Help: "ルートとステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutricoach_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		coachReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricoach_coach_replies_total",
			Help: "トピック別のコーチ応答数",
		}, []string{"topic"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricoach_auth_attempts_total",
			Help: "プロバイダーと結果別のサインイン試行数",
		}, []string{"provider", "result"}),
		cleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricoach_cleanup_deleted_total",
			Help: "クリーンアップで削除された行数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.coachReplies,
		c.authAttempts,
		c.cleanupDeleted,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはchiのルートパターンを渡し、ラベルのカーディナリティを抑える。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCoachReply はコーチが返した応答のトピックを記録する。
func (c *Collector) RecordCoachReply(topic string) {
	c.coachReplies.WithLabelValues(topic).Inc()
}

// RecordAuthAttempt はサインイン試行の結果を記録する。
func (c *Collector) RecordAuthAttempt(provider string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttempts.WithLabelValues(provider, result).Inc()
}

// RecordCleanupDeleted はクリーンアップジョブで削除した行数を記録する。
func (c *Collector) RecordCleanupDeleted(kind string, count int64) {
	c.cleanupDeleted.WithLabelValues(kind).Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。メトリクスを無効にする場合やテストで使用する。
type Nop struct{}

var _ MetricsCollector = Nop{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordCoachReply(string)                               {}
func (Nop) RecordAuthAttempt(string, bool)                        {}
func (Nop) RecordCleanupDeleted(string, int64)                    {}
