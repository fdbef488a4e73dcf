// Package metrics 定义推荐服务的 Prometheus 指标。
//
// 指标分类：
//   - 请求：按接口与结果原因计数，延迟直方图
//   - 召回：Pipeline 各 Node 的耗时与输出数量
//   - 跳过：物品协同中找不到的选中歌曲
//   - 缓存：命中/未命中与熔断状态
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal 按接口与结果原因计数。
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "big5rec_requests_total",
			Help: "Total number of recommendation requests by endpoint and reason",
		},
		[]string{"endpoint", "reason"},
	)

	// RequestDuration 记录每次推荐的耗时。
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "big5rec_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"endpoint"},
	)

	// NodeDuration 记录 Pipeline 中每个 Node 的耗时。
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "big5rec_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"node", "kind"},
	)

	// NodeErrorsTotal 统计 Node 失败次数。
	NodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "big5rec_node_errors_total",
			Help: "Total number of pipeline node failures",
		},
		[]string{"node"},
	)

	// SkippedItemsTotal 统计物品协同时被跳过的选中歌曲。
	SkippedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "big5rec_skipped_items_total",
			Help: "Total number of selected items skipped during item similarity lookup",
		},
		[]string{"reason"},
	)

	// CacheHitsTotal / CacheMissesTotal 结果缓存命中情况。
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "big5rec_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "big5rec_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	// CacheErrorsTotal 统计缓存读写失败（含熔断打开后的拒绝）。
	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "big5rec_cache_errors_total",
			Help: "Total number of result cache failures",
		},
		[]string{"op"},
	)

	// CacheBreakerState 熔断器状态：0 closed，1 half-open，2 open。
	CacheBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "big5rec_cache_breaker_state",
			Help: "Result cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// ReferenceRows 已加载参考表的行数。
	ReferenceRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "big5rec_reference_rows",
			Help: "Number of rows in loaded reference tables",
		},
		[]string{"table"},
	)
)

// RecordRequest 记录一次推荐请求。
func RecordRequest(endpoint, reason string, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(endpoint, reason).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordNode 记录一次 Node 执行，可直接作为 pipeline.Hook 的实现体。
func RecordNode(node, kind string, elapsed time.Duration, err error) {
	NodeDuration.WithLabelValues(node, kind).Observe(elapsed.Seconds())
	if err != nil {
		NodeErrorsTotal.WithLabelValues(node).Inc()
	}
}

// RecordSkipped 记录被跳过的选中歌曲。
func RecordSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	SkippedItemsTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordCacheHit 记录缓存命中。
func RecordCacheHit() { CacheHitsTotal.Inc() }

// RecordCacheMiss 记录缓存未命中。
func RecordCacheMiss() { CacheMissesTotal.Inc() }

// RecordCacheError 记录缓存失败，op 为 get 或 set。
func RecordCacheError(op string) { CacheErrorsTotal.WithLabelValues(op).Inc() }

// SetBreakerState 更新熔断器状态。
func SetBreakerState(state int) { CacheBreakerState.Set(float64(state)) }

// SetReferenceRows 更新参考表行数。
func SetReferenceRows(table string, n int) {
	ReferenceRows.WithLabelValues(table).Set(float64(n))
}
