package ipmark

import (
	"context"
	"net/netip"
)

// MetadataSource supplies field values for a validated address.
//
// Implementations map an address to template field values (country, ASN,
// city, and so on). A failed lookup is per-address: the decorator recovers
// by falling back to the raw address text and continues processing.
//
// Implementations must be safe for concurrent use when the Decorator is
// shared across processing contexts.
type MetadataSource interface {
	Lookup(addr netip.Addr, raw string) (map[string]string, error)
}

// DecoratorOption configures a Decorator.
type DecoratorOption func(*Decorator)

// RoutableOnly restricts decoration to addresses the check accepts
// (typically those with an ASN entry); other addresses pass through as
// their raw text.
func RoutableOnly(check func(netip.Addr) bool) DecoratorOption {
	return func(d *Decorator) {
		d.routable = check
	}
}

// WithDecoratorLogger sets the logger used for per-address lookup failures.
func WithDecoratorLogger(logger Logger) DecoratorOption {
	return func(d *Decorator) {
		if !isNilLogger(logger) {
			d.logger = logger
		}
	}
}

// WithDecoratorMetrics sets the metrics implementation used for cache and
// lookup outcomes.
func WithDecoratorMetrics(metrics Metrics) DecoratorOption {
	return func(d *Decorator) {
		if !isNilMetrics(metrics) {
			d.metrics = metrics
		}
	}
}

// Decorator turns matched addresses into rendered decorations.
//
// It owns the check-then-insert discipline around the Cache: one lookup per
// hit, one lookup plus one insert per miss, and exactly one metadata
// resolution and template render per distinct address text.
//
// A Decorator is single-owner, like its Cache.
type Decorator struct {
	template *Template
	source   MetadataSource
	cache    *Cache
	routable func(netip.Addr) bool
	logger   Logger
	metrics  Metrics
}

// NewDecorator creates a Decorator over a compiled template, a metadata
// source, and a caller-owned cache.
func NewDecorator(template *Template, source MetadataSource, cache *Cache, opts ...DecoratorOption) *Decorator {
	d := &Decorator{
		template: template,
		source:   source,
		cache:    cache,
		logger:   noopLogger{},
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decorate returns the decoration for one matched address.
//
// The raw bytes are the matched span of the scanned buffer; addr is the
// parsed form from the Match. On a cache hit nothing is allocated. On a
// miss the metadata source is queried, the template rendered, and the
// result cached; a lookup failure falls back to the raw address text (also
// cached, so a failing address is looked up once per run).
func (d *Decorator) Decorate(ctx context.Context, addr netip.Addr, raw []byte) string {
	if cached, ok := d.cache.Get(raw); ok {
		d.metrics.RecordCacheHit()
		return cached
	}
	d.metrics.RecordCacheMiss()

	rawStr := string(raw)

	if d.routable != nil && !d.routable(addr) {
		d.cache.Put(raw, rawStr)
		return rawStr
	}

	fields, err := d.source.Lookup(addr, rawStr)
	if err != nil {
		d.logger.WarnContext(ctx, "metadata lookup failed, leaving address undecorated",
			"ip", rawStr, "error", err)
		d.metrics.RecordLookupFailure()
		d.cache.Put(raw, rawStr)
		return rawStr
	}

	decoration := d.template.Render(func(field string) string {
		if value, ok := fields[field]; ok {
			return value
		}
		if field == "ip" {
			// Sources are not required to echo the address back.
			return rawStr
		}
		return ""
	})

	d.cache.Put(raw, decoration)
	return decoration
}
