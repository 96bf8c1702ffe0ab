// Package metrics defines the Prometheus collectors exported by the resolver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the resolver's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	FetchOutcomes  *prometheus.CounterVec
	Extractions    *prometheus.CounterVec
	LookupErrors   *prometheus.CounterVec
	LookupDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instatrack_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
		FetchOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instatrack_fetch_outcomes_total",
				Help: "Page requests by classified outcome",
			},
			[]string{"outcome"},
		),
		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instatrack_extractions_total",
				Help: "Successful extractions by the strategy that supplied the data",
			},
			[]string{"method"},
		),
		LookupErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instatrack_lookup_errors_total",
				Help: "Failed lookups by severity",
			},
			[]string{"severity"},
		),
		LookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "instatrack_lookup_duration_seconds",
				Help:    "Time spent resolving a post, cache hits included",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		m.CacheLookups,
		m.FetchOutcomes,
		m.Extractions,
		m.LookupErrors,
		m.LookupDuration,
	)

	return m
}

// CacheHit records a cache hit or miss.
func (m *Metrics) CacheHit(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Fetched records a classified page request.
func (m *Metrics) Fetched(outcome string) {
	if m == nil {
		return
	}
	m.FetchOutcomes.WithLabelValues(outcome).Inc()
}

// Extracted records a successful extraction.
func (m *Metrics) Extracted(method string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(method).Inc()
}

// Failed records a lookup error.
func (m *Metrics) Failed(severity string) {
	if m == nil {
		return
	}
	m.LookupErrors.WithLabelValues(severity).Inc()
}

// ObserveLookup records the duration of a lookup that started at start.
func (m *Metrics) ObserveLookup(start time.Time) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(time.Since(start).Seconds())
}
