// Package metrics exposes Prometheus instrumentation for the detector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared by the upstream clients, caches and pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Throttled        *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	TokensScored     *prometheus.CounterVec
	DetectDuration   prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates and registers the collectors on reg. A nil reg uses a fresh registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "meme_detector"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Upstream calls by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream call latency including retries",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		Throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_throttled_total",
				Help:      "HTTP 429 responses received by source",
			},
			[]string{"source"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
		TokensScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_scored_total",
				Help:      "Tokens scored by risk tier",
			},
			[]string{"tier"},
		),
		DetectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "detect_duration_seconds",
				Help:      "End-to-end detector latency",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.Throttled,
		m.CacheLookups,
		m.TokensScored,
		m.DetectDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveUpstream(source, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(source).Observe(seconds)
}

func (m *Metrics) IncThrottled(source string) {
	if m == nil {
		return
	}
	m.Throttled.WithLabelValues(source).Inc()
}

func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (m *Metrics) TokenScored(tier string) {
	if m == nil {
		return
	}
	m.TokensScored.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveDetect(seconds float64) {
	if m == nil {
		return
	}
	m.DetectDuration.Observe(seconds)
}
