package ipmark

// The scanner splits a buffer into maximal runs of the address alphabet
// (decimal digits, hex digits, '.', ':') in one forward pass. Each run is a
// match candidate; sub-spans of a run are never candidates, so a token like
// "1.2.3.4.5" or "1.1.1.1:80" produces no match rather than a partial one.
// '%' is not part of the alphabet and therefore terminates a run, which is
// what makes "fe80::1%eth0" match as "fe80::1".
//
// The byte-class table is built once at package initialization and shared by
// every Extractor.

const (
	classDigit byte = 1 << iota
	classHexLetter
	classDot
	classColon
)

var byteClasses = buildByteClasses()

func buildByteClasses() [256]byte {
	var t [256]byte
	for b := '0'; b <= '9'; b++ {
		t[b] = classDigit
	}
	for b := 'a'; b <= 'f'; b++ {
		t[b] = classHexLetter
	}
	for b := 'A'; b <= 'F'; b++ {
		t[b] = classHexLetter
	}
	t['.'] = classDot
	t[':'] = classColon
	return t
}

// run is a maximal span of address-alphabet bytes plus the shape facts the
// scanner observed while walking it.
type run struct {
	start, end int
	sawDot     bool
	sawColon   bool
	sawHex     bool
}

// nextRun returns the first maximal address-alphabet run starting at or
// after pos, and the position scanning should resume from. ok is false when
// the rest of the buffer holds no alphabet bytes.
func nextRun(buf []byte, pos int) (r run, next int, ok bool) {
	n := len(buf)
	i := pos
	for i < n && byteClasses[buf[i]] == 0 {
		i++
	}
	if i == n {
		return run{}, n, false
	}

	r.start = i
	for i < n {
		class := byteClasses[buf[i]]
		if class == 0 {
			break
		}
		switch class {
		case classDot:
			r.sawDot = true
		case classColon:
			r.sawColon = true
		case classHexLetter:
			r.sawHex = true
		}
		i++
	}
	r.end = i
	return r, i, true
}

// family infers the candidate address family from the run's shape. A run
// with a colon can only be IPv6; a dotted run without colons or hex letters
// can only be IPv4. Anything else (bare digits, hex words like "feed") is
// not address-shaped.
func (r run) family() (Family, bool) {
	switch {
	case r.sawColon:
		return FamilyIPv6, true
	case r.sawDot && !r.sawHex:
		return FamilyIPv4, true
	default:
		return 0, false
	}
}
