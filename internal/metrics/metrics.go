package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spacesedan/sentidash/internal/models"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentidash_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentidash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)
)

// Analysis metrics
var (
	ResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentidash_results_total",
			Help: "Analyzed texts by sentiment label and entry point",
		},
		[]string{"sentiment", "origin"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentidash_batch_size",
			Help:    "Number of records per analyzed batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentidash_side_effect_failures_total",
			Help: "Failed archive or publish attempts after results were stored",
		},
		[]string{"target"},
	)
)

// DependencyHealthy is 1 while the named dependency answers health checks.
var DependencyHealthy = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "sentidash_dependency_healthy",
		Help: "Dependency health (1=healthy, 0=unhealthy)",
	},
	[]string{"dependency"},
)

// RecordResults counts rows per label and the size of the batch they came in.
func RecordResults(origin string, rows []models.SentimentResult) {
	if len(rows) == 0 {
		return
	}
	BatchSize.Observe(float64(len(rows)))
	for _, r := range rows {
		ResultsTotal.WithLabelValues(r.Sentiment.String(), origin).Inc()
	}
}

func SetHealthy(dependency string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	DependencyHealthy.WithLabelValues(dependency).Set(v)
}
