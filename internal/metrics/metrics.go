package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahamap_requests_total",
		Help: "Total number of map API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sahamap_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sahamap_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
	FeedFetchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sahamap_feed_fetch_total",
		Help: "Total city member feed fetches",
	})
	FeedFetchFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sahamap_feed_fetch_fail_total",
		Help: "Total failed city member feed fetches",
	})
	FeedFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sahamap_feed_fetch_duration_ms",
		Help:    "City member feed fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	FeedCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sahamap_feed_cache_hits_total",
		Help: "Total redis feed cache hits",
	})
	FeedCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sahamap_feed_cache_misses_total",
		Help: "Total redis feed cache misses",
	})
	IndexMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sahamap_index_members",
		Help: "Members held by the current city member index",
	})
	MapEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahamap_map_events_total",
		Help: "Pointer events received by type",
	}, []string{"type"})
	MapUnresolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahamap_map_unresolved_total",
		Help: "Pointer events whose target resolved to no region",
	}, []string{"level"})
	MapTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sahamap_map_transitions_total",
		Help: "Map view state transitions by kind",
	}, []string{"transition"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sahamap_active_sessions",
		Help: "Map sessions currently held in memory",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(FeedFetchTotal)
	prometheus.MustRegister(FeedFetchFailTotal)
	prometheus.MustRegister(FeedFetchDurationMs)
	prometheus.MustRegister(FeedCacheHitsTotal)
	prometheus.MustRegister(FeedCacheMissesTotal)
	prometheus.MustRegister(IndexMembers)
	prometheus.MustRegister(MapEventsTotal)
	prometheus.MustRegister(MapUnresolvedTotal)
	prometheus.MustRegister(MapTransitionsTotal)
	prometheus.MustRegister(ActiveSessions)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
