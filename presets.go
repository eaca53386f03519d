package ipmark

// PresetPublicOnly configures extraction of routable public addresses of
// both families.
//
// This matches the default configuration and exists to make the intent
// explicit at call sites.
func PresetPublicOnly() Option {
	return func(c *config) error {
		return applyOptions(c,
			IPv4(true),
			IPv6(true),
			PrivateIPs(false),
			LoopbackIPs(false),
			LinkLocalIPs(false),
		)
	}
}

// PresetAllAddresses configures extraction of every syntactically valid
// address regardless of category.
//
// Useful for log auditing where private and loopback addresses matter as
// much as public ones.
func PresetAllAddresses() Option {
	return func(c *config) error {
		return applyOptions(c,
			IPv4(true),
			IPv6(true),
			PrivateIPs(true),
			LoopbackIPs(true),
			LinkLocalIPs(true),
		)
	}
}

// PresetIPv4Only restricts extraction to IPv4 addresses, leaving category
// toggles unchanged.
func PresetIPv4Only() Option {
	return func(c *config) error {
		return applyOptions(c,
			IPv4(true),
			IPv6(false),
		)
	}
}

// PresetIPv6Only restricts extraction to IPv6 addresses, leaving category
// toggles unchanged.
func PresetIPv6Only() Option {
	return func(c *config) error {
		return applyOptions(c,
			IPv4(false),
			IPv6(true),
		)
	}
}
