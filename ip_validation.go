package ipmark

import "net/netip"

var broadcastIPv4 = netip.AddrFrom4([4]byte{255, 255, 255, 255})

// classify places a validated address into its reserved-range category.
// Loopback wins over private; the limited-broadcast address is grouped
// with link-local.
func classify(ip netip.Addr) Category {
	switch {
	case ip.IsLoopback():
		return CategoryLoopback
	case ip == broadcastIPv4 || ip.IsLinkLocalUnicast():
		return CategoryLinkLocal
	case ip.IsPrivate():
		return CategoryPrivate
	default:
		return CategoryPublic
	}
}
