package ipmark

// Metrics records scanning and decoration outcomes.
//
// Implementations should be safe for concurrent use, as a single Extractor
// instance is typically shared across many goroutines.
type Metrics interface {
	// RecordMatch is called once per accepted match, labeled by family
	// ("ipv4" or "ipv6").
	RecordMatch(family string)
	// RecordCacheHit is called when a decoration is served from the cache.
	RecordCacheHit()
	// RecordCacheMiss is called when a decoration has to be computed.
	RecordCacheMiss()
	// RecordLookupFailure is called when a metadata source fails for one
	// address and the fallback decoration is used.
	RecordLookupFailure()
}

// noopMetrics is the default Metrics implementation when metrics are not
// explicitly configured.
type noopMetrics struct{}

func (noopMetrics) RecordMatch(string) {}

func (noopMetrics) RecordCacheHit() {}

func (noopMetrics) RecordCacheMiss() {}

func (noopMetrics) RecordLookupFailure() {}
