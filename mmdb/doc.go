// Package mmdb resolves template field values for IP addresses from local
// MMDB databases.
//
// A Provider owns one or more database readers and maps an address to the
// field values its databases can answer. Providers register in a Registry
// under a short name; the MaxMind GeoLite2/GeoIP2 provider is registered by
// default and is the active provider unless changed.
//
// Provider.Lookup returns plain field maps, so an opened provider satisfies
// the decoration pipeline's metadata source contract directly.
package mmdb
