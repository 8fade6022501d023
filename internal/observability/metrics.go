package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiadmin_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wikiadmin_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LoginAttempts counts admin login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiadmin_login_attempts_total",
		Help: "Total number of admin login attempts by outcome",
	}, []string{"outcome"})

	// ConfigWrites counts config value writes by config type.
	ConfigWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiadmin_config_writes_total",
		Help: "Total number of config value writes by type",
	}, []string{"type"})

	// UploadsTotal counts image uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiadmin_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})

	// UploadBytes records the size of accepted uploads.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wikiadmin_upload_bytes",
		Help:    "Size of accepted uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	// ArticleViews counts article view increments.
	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikiadmin_article_views_total",
		Help: "Total number of article view increments",
	})

	// WikiReviews counts wiki review decisions.
	WikiReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiadmin_wiki_reviews_total",
		Help: "Total number of wiki review decisions",
	}, []string{"decision"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
