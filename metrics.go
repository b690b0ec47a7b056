package routeprobe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors Engine updates as a run
// progresses. The counters/histogram are registered explicitly rather
// than via an HTTP-handler wrapper, since routeprobe is itself the
// client making requests, not a server receiving them.
type Metrics struct {
	TrialsTotal      *prometheus.CounterVec
	TrialFailures    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ShrinkIterations prometheus.Histogram
}

// NewMetrics registers a fresh set of collectors against reg. Pass
// prometheus.NewRegistry() for test isolation, or
// prometheus.DefaultRegisterer for a process-wide run.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routeprobe",
			Name:      "trials_total",
			Help:      "Total number of trials executed, by route and method.",
		}, []string{"route", "method"}),
		TrialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routeprobe",
			Name:      "trial_failures_total",
			Help:      "Total number of trials that failed validation, by route and method.",
		}, []string{"route", "method"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "routeprobe",
			Name:      "request_duration_seconds",
			Help:      "Observed Transport.Send latency per route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ShrinkIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routeprobe",
			Name:      "shrink_iterations",
			Help:      "Number of candidate trees tried per completed shrink.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
	reg.MustRegister(m.TrialsTotal, m.TrialFailures, m.RequestDuration, m.ShrinkIterations)
	return m
}

// NoopMetrics returns a Metrics registered against a private registry,
// for callers that want the interface satisfied without exporting
// anything process-wide.
func NoopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
