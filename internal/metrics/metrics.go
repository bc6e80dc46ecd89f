// 包 metrics：集中声明 Prometheus 指标并暴露 /metrics 处理器。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests：按路径与状态码统计请求量。
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoipd_http_requests_total",
			Help: "HTTP requests by path and status code.",
		},
		[]string{"path", "status"},
	)

	// LookupDuration：单次地理库查询耗时分布。
	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoipd_lookup_seconds",
			Help:    "GeoIP database lookup latency.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// LookupMisses：库中无记录的查询次数。
	LookupMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geoipd_lookup_misses_total",
			Help: "Lookups that found no record in the database.",
		},
	)

	// DBUpdates：按版本与结果统计数据库更新次数。
	DBUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoipd_db_updates_total",
			Help: "Database refresh attempts by edition and result.",
		},
		[]string{"edition", "result"},
	)

	// DBBuildEpoch：当前在用库文件的构建时间戳。
	DBBuildEpoch = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geoipd_db_build_epoch",
			Help: "Build epoch of the live database by edition.",
		},
		[]string{"edition"},
	)

	// CacheHits：Redis 结果缓存命中次数。
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geoipd_cache_hits_total",
			Help: "Lookup responses served from cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		LookupDuration,
		LookupMisses,
		DBUpdates,
		DBBuildEpoch,
		CacheHits,
	)
}

// Handler：/metrics 的标准处理器。
func Handler() http.Handler {
	return promhttp.Handler()
}
