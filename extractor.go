package ipmark

import (
	"fmt"
	"iter"
	"net/netip"
)

// Extractor finds IPv4 and IPv6 addresses in byte buffers according to an
// immutable family and category configuration.
//
// Extractor instances are safe for concurrent reuse.
type Extractor struct {
	config *config
}

// New creates an Extractor from one or more Option builders.
//
// New returns an error wrapping ErrNoFamilies when both address families
// have been disabled; this is the only configuration that cannot produce
// output.
func New(opts ...Option) (*Extractor, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Extractor{config: cfg}, nil
}

// Scan returns a lazy sequence of matches in buf, in order of strictly
// increasing start offset. The sequence is restartable: ranging over it
// again rescans the buffer from the beginning.
//
// Scanning is a pure function of buf and the extractor's configuration; it
// performs no allocation per candidate and may be abandoned at any point.
func (e *Extractor) Scan(buf []byte) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for pos < len(buf) {
			r, next, ok := nextRun(buf, pos)
			if !ok {
				return
			}
			// Resume after the whole run: a candidate rejected by
			// validation or filtering still consumes its span, so
			// shorter sub-candidates inside it are never re-examined.
			pos = next

			m, ok := e.accept(buf, r)
			if !ok {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// AppendMatches appends all matches in buf to dst and returns the extended
// slice. It is a convenience for callers that want the eager form of Scan.
func (e *Extractor) AppendMatches(dst []Match, buf []byte) []Match {
	for m := range e.Scan(buf) {
		dst = append(dst, m)
	}
	return dst
}

// accept validates a candidate run and applies family and category filters.
func (e *Extractor) accept(buf []byte, r run) (Match, bool) {
	family, ok := r.family()
	if !ok {
		return Match{}, false
	}

	candidate := buf[r.start:r.end]

	switch family {
	case FamilyIPv4:
		if !e.config.includeIPv4 {
			return Match{}, false
		}
		ip, ok := parseIPv4(candidate)
		if !ok {
			return Match{}, false
		}
		return e.filter(r, FamilyIPv4, ip)
	case FamilyIPv6:
		if !e.config.includeIPv6 {
			return Match{}, false
		}
		ip, ok := parseIPv6(candidate)
		if !ok {
			return Match{}, false
		}
		return e.filter(r, FamilyIPv6, ip)
	}

	return Match{}, false
}

func (e *Extractor) filter(r run, family Family, ip netip.Addr) (Match, bool) {
	cat := classify(ip)
	if !e.config.accepts(cat) {
		return Match{}, false
	}

	e.config.metrics.RecordMatch(family.String())

	return Match{
		Start:    r.start,
		End:      r.end,
		Family:   family,
		Category: cat,
		Addr:     ip,
	}, true
}
