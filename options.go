package ipmark

import "fmt"

// IPv4 configures whether IPv4 addresses are matched.
func IPv4(include bool) Option {
	return func(c *config) error {
		c.includeIPv4 = include
		return nil
	}
}

// IPv6 configures whether IPv6 addresses are matched.
func IPv6(include bool) Option {
	return func(c *config) error {
		c.includeIPv6 = include
		return nil
	}
}

// PrivateIPs configures whether private addresses (RFC 1918, fc00::/7) are
// matched.
func PrivateIPs(include bool) Option {
	return func(c *config) error {
		c.includePrivate = include
		return nil
	}
}

// LoopbackIPs configures whether loopback addresses (127.0.0.0/8, ::1) are
// matched.
func LoopbackIPs(include bool) Option {
	return func(c *config) error {
		c.includeLoopback = include
		return nil
	}
}

// LinkLocalIPs configures whether broadcast and link-local addresses
// (255.255.255.255, 169.254.0.0/16, fe80::/10) are matched.
func LinkLocalIPs(include bool) Option {
	return func(c *config) error {
		c.includeLinkLocal = include
		return nil
	}
}

// WithLogger sets the logger implementation used for warning events.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked once, after all options have been applied.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}
