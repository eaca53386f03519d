// Package ipmark finds IPv4 and IPv6 address occurrences in arbitrary text
// and decorates each occurrence in place with metadata (geolocation, ASN,
// and similar), preserving every other byte of the input exactly.
//
// # Features
//
//   - Single forward-pass scanner with strict structural validation for both
//     address families, including reserved-range classification
//   - Configurable filtering by family and by category (private, loopback,
//     broadcast/link-local, public)
//   - Pre-compiled decoration templates with {field} references and
//     single-pass substitution (no double-substitution of resolved values)
//   - Zero-allocation decoration cache on the hit path
//   - Inline (spliced text) and structured (JSON) renderings of matches
//   - Metadata-source agnostic: any provider satisfying MetadataSource works
//   - Optional observability with context-aware logging and pluggable metrics
//
// # Basic Usage
//
// Scan a buffer for public addresses:
//
//	extractor, err := ipmark.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for m := range extractor.Scan(line) {
//	    fmt.Printf("%s %s [%d:%d)\n", m.Family, line[m.Start:m.End], m.Start, m.End)
//	}
//
// # Filtering
//
// Which addresses are reported is controlled at construction time. At least
// one address family must remain enabled or New fails with ErrNoFamilies:
//
//	extractor, err := ipmark.New(
//	    ipmark.IPv4(true),
//	    ipmark.IPv6(true),
//	    ipmark.PrivateIPs(false),
//	    ipmark.LoopbackIPs(false),
//	    ipmark.LinkLocalIPs(false),
//	)
//
// # Decoration
//
// A Decorator combines a compiled Template, a MetadataSource, and a Cache.
// On a cache miss the source is queried once and the rendered decoration is
// cached; subsequent occurrences of the same address text hit the cache
// without allocating:
//
//	tmpl, err := ipmark.CompileTemplate("<{ip}|AS{asnnum}_{asnorg}|{country_iso}|{city}>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dec := ipmark.NewDecorator(tmpl, source, ipmark.NewCache())
//	tagged := ipmark.NewTagged(line)
//	for m := range extractor.Scan(line) {
//	    raw := line[m.Start:m.End]
//	    tagged.Tag(ipmark.Tag{
//	        Value:      string(raw),
//	        Start:      m.Start,
//	        End:        m.End,
//	        Decoration: dec.Decorate(ctx, m.Addr, raw),
//	    })
//	}
//	tagged.WriteInline(os.Stdout)
//
// # Observability
//
// The logger mirrors slog's WarnContext signature, so *slog.Logger can be
// used directly. A Prometheus metrics adapter lives in
// github.com/ipmark/ipmark/prometheus:
//
//	extractor, err := ipmark.New(
//	    ipmark.WithLogger(slog.Default()),
//	    ipmark.WithMetrics(metrics),
//	)
//
// # Thread Safety
//
// Extractor and Template instances are immutable after construction and safe
// for concurrent use. Cache, Tagged, and Decorator are single-owner: use one
// per sequential processing context.
package ipmark
