package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kfit",
		Subsystem: "session",
		Name:      "login_attempts_total",
		Help:      "Upstream login attempts grouped by result.",
	}, []string{"result"})

	fetchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kfit",
		Subsystem: "fetcher",
		Name:      "fetches_total",
		Help:      "Sub-record fetches grouped by data kind and outcome.",
	}, []string{"kind", "outcome"})

	cacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kfit",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups grouped by data kind and result (hit, miss, error).",
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(loginCounter, fetchCounter, cacheCounter)
}

// RecordLogin counts one login attempt.
func RecordLogin(result string) {
	loginCounter.WithLabelValues(result).Inc()
}

// RecordFetch counts one fetcher call.
func RecordFetch(kind, outcome string) {
	fetchCounter.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(kind, result string) {
	cacheCounter.WithLabelValues(kind, result).Inc()
}
