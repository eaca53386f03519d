package mmdb

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oschwald/maxminddb-golang/v2"
)

// asnRecord is the slice of a GeoLite2-ASN entry the templates can use.
// Decoding only what templates reference keeps lookups cheap.
type asnRecord struct {
	Number       uint32 `maxminddb:"autonomous_system_number"`
	Organization string `maxminddb:"autonomous_system_organization"`
}

// cityRecord is the slice of a GeoLite2-City entry the templates can use.
type cityRecord struct {
	City struct {
		Names struct {
			EN string `maxminddb:"en"`
		} `maxminddb:"names"`
	} `maxminddb:"city"`
	Continent struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"continent"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
		Names   struct {
			EN string `maxminddb:"en"`
		} `maxminddb:"names"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
}

// MaxMind resolves fields from MaxMind GeoLite2 or GeoIP2 databases.
//
// It prefers the unified GeoLite2-ASN.mmdb and GeoLite2-City.mmdb files and
// falls back to per-family splits (GeoLite2-ASN-IPv4.mmdb and friends) when
// a deployment ships those instead. At least one database must be present.
type MaxMind struct {
	asn  *maxminddb.Reader
	city *maxminddb.Reader

	asnV4  *maxminddb.Reader
	asnV6  *maxminddb.Reader
	cityV4 *maxminddb.Reader
	cityV6 *maxminddb.Reader

	opened bool
}

// NewMaxMind creates a closed MaxMind provider.
func NewMaxMind() *MaxMind {
	return &MaxMind{}
}

// Name implements Provider.
func (p *MaxMind) Name() string {
	return "MaxMind GeoIP2"
}

// defaultDirs are probed in order by DefaultDir.
var defaultDirs = []string{
	"/usr/share/GeoIP",
	"/opt/homebrew/var/GeoIP",
	"/var/lib/GeoIP",
}

// DefaultDir implements Provider. It returns the first standard GeoIP
// directory that exists, or the first candidate when none do.
func (p *MaxMind) DefaultDir() string {
	for _, dir := range defaultDirs {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return defaultDirs[0]
}

// FileNames implements Provider.
func (p *MaxMind) FileNames() []string {
	return []string{
		"GeoLite2-ASN.mmdb",
		"GeoLite2-City.mmdb",
		"GeoLite2-ASN-IPv4.mmdb",
		"GeoLite2-ASN-IPv6.mmdb",
		"GeoLite2-City-IPv4.mmdb",
		"GeoLite2-City-IPv6.mmdb",
	}
}

// Fields implements Provider.
func (p *MaxMind) Fields() []Field {
	return []Field{
		{Name: "ip", Description: "The IP address itself", Example: "93.184.216.34"},
		{Name: "asnnum", Description: "Autonomous system number", Example: "15133"},
		{Name: "asnorg", Description: "Autonomous system organization", Example: "MCI_Communications_Services"},
		{Name: "city", Description: "City name", Example: "Los_Angeles"},
		{Name: "continent", Description: "Continent code", Example: "NA"},
		{Name: "country_iso", Description: "Country ISO code", Example: "US"},
		{Name: "country_full", Description: "Full country name", Example: "United_States"},
		{Name: "latitude", Description: "Latitude coordinate", Example: "34.0544"},
		{Name: "longitude", Description: "Longitude coordinate", Example: "-118.2441"},
		{Name: "timezone", Description: "Time zone name", Example: "America/Los_Angeles"},
	}
}

// Open implements Provider.
func (p *MaxMind) Open(dir string) error {
	open := func(name string) (*maxminddb.Reader, error) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		reader, err := maxminddb.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return reader, nil
	}

	var err error
	if p.asn, err = open("GeoLite2-ASN.mmdb"); err != nil {
		return err
	}
	if p.city, err = open("GeoLite2-City.mmdb"); err != nil {
		return err
	}

	if p.asn == nil {
		if p.asnV4, err = open("GeoLite2-ASN-IPv4.mmdb"); err != nil {
			return err
		}
		if p.asnV6, err = open("GeoLite2-ASN-IPv6.mmdb"); err != nil {
			return err
		}
	}
	if p.city == nil {
		if p.cityV4, err = open("GeoLite2-City-IPv4.mmdb"); err != nil {
			return err
		}
		if p.cityV6, err = open("GeoLite2-City-IPv6.mmdb"); err != nil {
			return err
		}
	}

	if p.asn == nil && p.city == nil &&
		p.asnV4 == nil && p.asnV6 == nil && p.cityV4 == nil && p.cityV6 == nil {
		return fmt.Errorf("%w in %s (need one of %v)", ErrNoDatabases, dir, p.FileNames())
	}

	p.opened = true
	return nil
}

// Close implements Provider.
func (p *MaxMind) Close() error {
	var firstErr error
	for _, reader := range []**maxminddb.Reader{
		&p.asn, &p.city, &p.asnV4, &p.asnV6, &p.cityV4, &p.cityV6,
	} {
		if *reader == nil {
			continue
		}
		if err := (*reader).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		*reader = nil
	}
	p.opened = false
	return firstErr
}

// Lookup implements Provider. Values containing spaces are rewritten with
// underscores so decorations never break column alignment in logs.
func (p *MaxMind) Lookup(addr netip.Addr, raw string) (map[string]string, error) {
	if !p.opened {
		return nil, ErrNotOpened
	}

	asn, _ := p.lookupASN(addr)
	city, _ := p.lookupCity(addr)

	fields := map[string]string{
		"ip":           raw,
		"asnnum":       strconv.FormatUint(uint64(asn.Number), 10),
		"asnorg":       normalizeValue(asn.Organization),
		"city":         normalizeValue(city.City.Names.EN),
		"continent":    city.Continent.Code,
		"country_iso":  city.Country.ISOCode,
		"country_full": normalizeValue(city.Country.Names.EN),
		"latitude":     strconv.FormatFloat(city.Location.Latitude, 'f', -1, 64),
		"longitude":    strconv.FormatFloat(city.Location.Longitude, 'f', -1, 64),
		"timezone":     city.Location.TimeZone,
	}
	return fields, nil
}

// Routable implements Provider: an address is routable when the ASN data
// has an entry for it. Without ASN data nothing is considered routable.
func (p *MaxMind) Routable(addr netip.Addr) bool {
	if !p.opened {
		return false
	}
	_, found := p.lookupASN(addr)
	return found
}

func (p *MaxMind) lookupASN(addr netip.Addr) (asnRecord, bool) {
	reader := p.asn
	if reader == nil {
		reader = p.splitReader(addr, p.asnV4, p.asnV6)
	}
	var rec asnRecord
	ok := decodeInto(reader, addr, &rec)
	return rec, ok
}

func (p *MaxMind) lookupCity(addr netip.Addr) (cityRecord, bool) {
	reader := p.city
	if reader == nil {
		reader = p.splitReader(addr, p.cityV4, p.cityV6)
	}
	var rec cityRecord
	ok := decodeInto(reader, addr, &rec)
	return rec, ok
}

func (p *MaxMind) splitReader(addr netip.Addr, v4, v6 *maxminddb.Reader) *maxminddb.Reader {
	if addr.Unmap().Is4() {
		return v4
	}
	return v6
}

func decodeInto(reader *maxminddb.Reader, addr netip.Addr, rec any) bool {
	if reader == nil {
		return false
	}
	result := reader.Lookup(addr)
	if err := result.Decode(rec); err != nil {
		return false
	}
	return result.Found()
}

func normalizeValue(v string) string {
	return strings.ReplaceAll(v, " ", "_")
}
