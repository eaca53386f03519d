package ipmark

import "net/netip"

// parseIPv4 validates b as a strict dotted quad and returns the parsed
// address. Rules: exactly four groups separated by '.', each 1-3 decimal
// digits with value 0-255, and no leading zero unless the group is exactly
// "0". The leading-zero rule rejects octal-looking input such as
// "127.0.0.01".
func parseIPv4(b []byte) (netip.Addr, bool) {
	// "0.0.0.0" is 7 bytes, "255.255.255.255" is 15.
	if len(b) < 7 || len(b) > 15 {
		return netip.Addr{}, false
	}

	var octets [4]byte
	oct := 0
	val := 0
	digits := 0

	for _, c := range b {
		switch {
		case c == '.':
			if digits == 0 || oct == 3 {
				return netip.Addr{}, false
			}
			octets[oct] = byte(val)
			oct++
			val = 0
			digits = 0
		case c >= '0' && c <= '9':
			if digits > 0 && val == 0 {
				return netip.Addr{}, false
			}
			val = val*10 + int(c-'0')
			if val > 255 {
				return netip.Addr{}, false
			}
			digits++
		default:
			return netip.Addr{}, false
		}
	}

	if oct != 3 || digits == 0 {
		return netip.Addr{}, false
	}
	octets[3] = byte(val)

	return netip.AddrFrom4(octets), true
}

// parseIPv6 validates b as an IPv6 address and returns the parsed address.
// Rules: up to 8 groups of 1-4 hex digits separated by ':'; at most one "::"
// standing for one or more all-zero groups, with the expanded group count
// equal to 8; an optional trailing dotted quad (strict IPv4 rules) replacing
// the last two groups. Zone suffixes are not accepted; the scanner never
// includes '%' in a candidate.
//
// Implemented over bytes rather than netip.ParseAddr to keep the reject
// path allocation-free.
func parseIPv6(b []byte) (netip.Addr, bool) {
	if len(b) < 2 {
		return netip.Addr{}, false
	}

	var groups [8]uint16
	n := 0
	compress := -1

	i := 0
	if b[0] == ':' {
		if b[1] != ':' {
			return netip.Addr{}, false
		}
		compress = 0
		i = 2
	}

	for i < len(b) {
		if n == 8 {
			return netip.Addr{}, false
		}

		// A dotted tail replaces the last two hex groups.
		if dottedTail(b[i:]) {
			v4, ok := parseIPv4(b[i:])
			if !ok || n > 6 {
				return netip.Addr{}, false
			}
			quad := v4.As4()
			groups[n] = uint16(quad[0])<<8 | uint16(quad[1])
			groups[n+1] = uint16(quad[2])<<8 | uint16(quad[3])
			n += 2
			i = len(b)
			break
		}

		start := i
		val := uint32(0)
		for i < len(b) && byteClasses[b[i]]&(classDigit|classHexLetter) != 0 {
			if i-start == 4 {
				return netip.Addr{}, false
			}
			val = val<<4 | uint32(hexVal(b[i]))
			i++
		}
		if i == start {
			return netip.Addr{}, false
		}
		groups[n] = uint16(val)
		n++

		if i == len(b) {
			break
		}
		if b[i] != ':' {
			return netip.Addr{}, false
		}
		i++
		if i < len(b) && b[i] == ':' {
			if compress >= 0 {
				return netip.Addr{}, false
			}
			compress = n
			i++
		} else if i == len(b) {
			// Trailing single colon.
			return netip.Addr{}, false
		}
	}

	if compress < 0 {
		if n != 8 {
			return netip.Addr{}, false
		}
	} else {
		// "::" must stand for at least one zero group.
		if n >= 8 {
			return netip.Addr{}, false
		}
		var full [8]uint16
		copy(full[:compress], groups[:compress])
		copy(full[8-(n-compress):], groups[compress:n])
		groups = full
	}

	var out [16]byte
	for g := 0; g < 8; g++ {
		out[2*g] = byte(groups[g] >> 8)
		out[2*g+1] = byte(groups[g])
	}

	return netip.AddrFrom16(out), true
}

// dottedTail reports whether rest starts a dotted-quad tail, i.e. a '.'
// appears before the next ':' or the end of the candidate.
func dottedTail(rest []byte) bool {
	for _, c := range rest {
		switch byteClasses[c] {
		case classDot:
			return true
		case classColon:
			return false
		}
	}
	return false
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
