package ipmark

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	// ErrNoFamilies is returned by New when both address families are
	// disabled. Extraction with no family enabled can only ever produce
	// empty output, so construction fails instead.
	ErrNoFamilies = errors.New("no address families enabled")
)

// Family identifies the address family of a match.
type Family int

const (
	// Start at 1 to avoid zero-value confusion.
	//
	// FamilyIPv4 is a dotted-quad IPv4 address.
	FamilyIPv4 Family = iota + 1
	// FamilyIPv6 is a colon-separated IPv6 address, possibly with an
	// embedded dotted-quad tail.
	FamilyIPv6
)

// String returns the canonical text representation of f.
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// Category classifies a validated address by its reserved-range membership.
type Category int

const (
	// CategoryPublic covers addresses in none of the reserved ranges below.
	CategoryPublic Category = iota + 1
	// CategoryPrivate covers RFC 1918 ranges for IPv4 and unique-local
	// (fc00::/7) for IPv6.
	CategoryPrivate
	// CategoryLoopback covers 127.0.0.0/8 and ::1.
	CategoryLoopback
	// CategoryLinkLocal covers 255.255.255.255 and 169.254.0.0/16 for IPv4
	// and link-local (fe80::/10) for IPv6.
	CategoryLinkLocal
)

// String returns the canonical text representation of c.
func (c Category) String() string {
	switch c {
	case CategoryPublic:
		return "public"
	case CategoryPrivate:
		return "private"
	case CategoryLoopback:
		return "loopback"
	case CategoryLinkLocal:
		return "link_local"
	default:
		return "unknown"
	}
}

// Match is an accepted byte range within a scanned buffer.
//
// The range [Start, End) indexes the original buffer and is guaranteed to
// hold a syntactically valid, category-accepted address. Matches produced by
// one scan are non-overlapping and strictly increasing in Start.
type Match struct {
	// Start is the byte offset of the first address byte.
	Start int
	// End is the byte offset one past the last address byte.
	End int
	// Family is the address family inferred during scanning.
	Family Family
	// Category is the reserved-range classification of the address.
	Category Category
	// Addr is the parsed address.
	Addr netip.Addr
}

// Len returns the length of the matched range in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// TemplateError reports a malformed template string.
//
// Pos is the byte offset of the offending construct within the template.
type TemplateError struct {
	Pos    int
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid template at byte %d: %s", e.Pos, e.Reason)
}
