package metrics

import "github.com/prometheus/client_golang/prometheus"

// Feedback and backend Prometheus metrics.
var (
	FeedbackDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsline",
			Name:      "feedback_dispatch_total",
			Help:      "Relevance feedback requests by transition kind and outcome",
		},
		[]string{"kind", "status"}, // status: sent / failed / dropped / skipped
	)

	FeedbackQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsline",
			Name:      "feedback_queue_depth",
			Help:      "Feedback requests waiting to be sent",
		},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsline",
			Name:      "backend_requests_total",
			Help:      "Total requests to the search backend",
		},
		[]string{"endpoint", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsline",
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsline",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var feedbackMetricsRegistered bool

// RegisterFeedbackMetrics registers feedback and backend metrics. Must be called once from main.
func RegisterFeedbackMetrics() {
	if feedbackMetricsRegistered {
		return
	}
	prometheus.MustRegister(FeedbackDispatchTotal)
	prometheus.MustRegister(FeedbackQueueDepth)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(SearchCacheTotal)
	feedbackMetricsRegistered = true
}
