package prometheus

import (
	"errors"
	"fmt"

	"github.com/ipmark/ipmark"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is a Prometheus-backed implementation of ipmark.Metrics.
type PrometheusMetrics struct {
	matchesTotal   *prom.CounterVec
	cacheTotal     *prom.CounterVec
	lookupFailures prom.Counter
}

// WithMetrics returns an ipmark option that installs Prometheus-backed
// metrics using prom.DefaultRegisterer.
func WithMetrics() ipmark.Option {
	return ipmark.WithMetricsFactory(func() (ipmark.Metrics, error) {
		return New()
	})
}

// WithRegisterer returns an ipmark option that installs Prometheus-backed
// metrics using the provided registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used.
func WithRegisterer(registerer prom.Registerer) ipmark.Option {
	return ipmark.WithMetricsFactory(func() (ipmark.Metrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// New creates PrometheusMetrics and registers its collectors on
// prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(prom.DefaultRegisterer)
}

// NewWithRegisterer creates PrometheusMetrics and registers its collectors on
// the given registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used. If the metrics are
// already registered, existing compatible collectors are reused.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	matchesTotalCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: "ipmark_matches_total",
			Help: "Total number of accepted address matches, labeled by family (ipv4, ipv6).",
		},
		[]string{"family"},
	)
	cacheTotalCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: "ipmark_cache_lookups_total",
			Help: "Decoration cache lookups, labeled by result (hit, miss).",
		},
		[]string{"result"},
	)
	lookupFailuresCollector := prom.NewCounter(
		prom.CounterOpts{
			Name: "ipmark_lookup_failures_total",
			Help: "Metadata lookups that failed and fell back to the raw address text.",
		},
	)

	matchesTotal, err := registerCounterVec(registerer, matchesTotalCollector, "ipmark_matches_total")
	if err != nil {
		return nil, err
	}

	cacheTotal, err := registerCounterVec(registerer, cacheTotalCollector, "ipmark_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	lookupFailures, err := registerCounter(registerer, lookupFailuresCollector, "ipmark_lookup_failures_total")
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{
		matchesTotal:   matchesTotal,
		cacheTotal:     cacheTotal,
		lookupFailures: lookupFailures,
	}, nil
}

func registerCounterVec(registerer prom.Registerer, collector *prom.CounterVec, metricName string) (*prom.CounterVec, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prom.CounterVec)
			if ok {
				return existing, nil
			}
			return nil, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		return nil, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

func registerCounter(registerer prom.Registerer, collector prom.Counter, metricName string) (prom.Counter, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(prom.Counter)
			if ok {
				return existing, nil
			}
			return nil, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		return nil, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

// RecordMatch increments ipmark_matches_total for the provided family.
func (m *PrometheusMetrics) RecordMatch(family string) {
	m.matchesTotal.WithLabelValues(family).Inc()
}

// RecordCacheHit increments ipmark_cache_lookups_total with result="hit".
func (m *PrometheusMetrics) RecordCacheHit() {
	m.cacheTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss increments ipmark_cache_lookups_total with result="miss".
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.cacheTotal.WithLabelValues("miss").Inc()
}

// RecordLookupFailure increments ipmark_lookup_failures_total.
func (m *PrometheusMetrics) RecordLookupFailure() {
	m.lookupFailures.Inc()
}
