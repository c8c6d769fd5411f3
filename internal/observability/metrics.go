package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProxyAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftcards_proxy_attempts_total",
			Help: "Proxy strategy attempts by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	ProxyAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "giftcards_proxy_attempt_duration_seconds",
			Help:    "Latency of a single proxy strategy attempt",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 15},
		},
		[]string{"strategy"},
	)

	RefreshCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftcards_refresh_cycles_total",
			Help: "Refresh cycles by final outcome",
		},
		[]string{"outcome"},
	)

	RefreshCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giftcards_refresh_cycle_duration_seconds",
			Help:    "Wall time from catalog fetch to the last settled detail",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
	)

	DetailFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftcards_detail_fetches_total",
			Help: "Per-product detail fetches by outcome",
		},
		[]string{"outcome"},
	)

	StaleUpdatesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftcards_stale_updates_dropped_total",
			Help: "Snapshot updates discarded because a newer cycle had started",
		},
	)

	ProductsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "giftcards_products",
			Help: "Products in the latest published snapshot",
		},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProxyAttemptsTotal,
			ProxyAttemptDuration,
			RefreshCyclesTotal,
			RefreshCycleDuration,
			DetailFetchesTotal,
			StaleUpdatesDropped,
			ProductsTracked,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProxyAttempt records one fetcher strategy attempt.
func ObserveProxyAttempt(strategy string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ProxyAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	ProxyAttemptDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}
