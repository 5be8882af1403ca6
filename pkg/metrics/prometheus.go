package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the API process.
type Metrics struct {
	DispatchPasses   prometheus.Counter
	CallsDispatched  prometheus.Counter
	CallsFailed      prometheus.Counter
	RowsReclaimed    prometheus.Counter
	PassDuration     prometheus.Histogram
	ProviderErrors   *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
}

// New registers and returns the metric set. Call once per process.
func New(namespace string) *Metrics {
	return &Metrics{
		DispatchPasses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_passes_total",
			Help:      "The total number of dispatcher passes executed",
		}),
		CallsDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_dispatched_total",
			Help:      "The total number of scheduled calls placed with the voice provider",
		}),
		CallsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_failed_total",
			Help:      "The total number of scheduled calls that ended in a failed status",
		}),
		RowsReclaimed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_reclaimed_total",
			Help:      "The total number of stuck calling rows reclaimed as failed",
		}),
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_pass_duration_seconds",
			Help:      "Time taken by a dispatcher pass",
			Buckets:   prometheus.DefBuckets,
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "The total number of upstream provider errors",
		}, []string{"provider"}),
		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "The total number of upstream provider requests",
		}, []string{"provider"}),
	}
}
