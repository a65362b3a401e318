package sendsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "sendsync"

	slotFeeRate  = "fee_rate"
	slotEstimate = "estimate"
)

// metrics holds the coordinator collectors. They are registered only when a
// Registerer is configured.
type metrics struct {
	fetches    *prometheus.CounterVec
	failures   *prometheus.CounterVec
	stale      *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	recomputes prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Number of fetches started per slot",
		}, []string{"slot"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_failures_total",
			Help:      "Number of live fetches that failed per slot",
		}, []string{"slot"}),
		stale: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_results_total",
			Help:      "Number of superseded fetch results dropped per slot",
		}, []string{"slot"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of live fetches per slot",
			Buckets:   prometheus.DefBuckets,
		}, []string{"slot"}),
		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "recomputes_total",
			Help:      "Number of aggregate state recomputations",
		}),
	}
}
