package ipmark

import (
	"fmt"
	"reflect"
)

// Option configures an Extractor.
//
// Construct options using package-provided option builder functions.
type Option func(*config) error

// config holds extractor configuration state.
//
// It is mutated by Option functions during construction and immutable once
// an Extractor has been built from it.
type config struct {
	includeIPv4 bool
	includeIPv6 bool

	includePrivate   bool
	includeLoopback  bool
	includeLinkLocal bool

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func defaultConfig() *config {
	return &config{
		includeIPv4:      true,
		includeIPv6:      true,
		includePrivate:   false,
		includeLoopback:  false,
		includeLinkLocal: false,
		logger:           noopLogger{},
		metrics:          noopMetrics{},
	}
}

func applyOptions(c *config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory {
		if cfg.metricsFactory == nil {
			return nil, fmt.Errorf("metrics factory cannot be nil")
		}

		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) validate() error {
	if !c.includeIPv4 && !c.includeIPv6 {
		return ErrNoFamilies
	}
	if isNilLogger(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilMetrics(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

// accepts reports whether addresses of the given category are reported.
func (c *config) accepts(cat Category) bool {
	switch cat {
	case CategoryPrivate:
		return c.includePrivate
	case CategoryLoopback:
		return c.includeLoopback
	case CategoryLinkLocal:
		return c.includeLinkLocal
	default:
		return true
	}
}

func isNilLogger(logger Logger) bool {
	return isNilInterface(logger)
}

func isNilMetrics(metrics Metrics) bool {
	return isNilInterface(metrics)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
