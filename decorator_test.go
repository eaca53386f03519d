package ipmark

import (
	"context"
	"errors"
	"net/netip"
	"testing"
)

// mockSource returns canned fields per address and counts lookups.
type mockSource struct {
	fields  map[string]map[string]string
	err     error
	lookups int
}

func (s *mockSource) Lookup(_ netip.Addr, raw string) (map[string]string, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	return s.fields[raw], nil
}

func mustTemplate(t *testing.T, src string) *Template {
	t.Helper()
	tmpl, err := CompileTemplate(src)
	if err != nil {
		t.Fatalf("CompileTemplate(%q) failed: %v", src, err)
	}
	return tmpl
}

func TestDecorate(t *testing.T) {
	source := &mockSource{fields: map[string]map[string]string{
		"8.8.8.8": {"country": "US", "asnorg": "GOOGLE"},
	}}
	d := NewDecorator(mustTemplate(t, "<{ip}|{country}|{asnorg}>"), source, NewCache())

	got := d.Decorate(context.Background(), netip.MustParseAddr("8.8.8.8"), []byte("8.8.8.8"))
	if got != "<8.8.8.8|US|GOOGLE>" {
		t.Errorf("Decorate = %q, want %q", got, "<8.8.8.8|US|GOOGLE>")
	}
}

// The ip field falls back to the raw matched text when the source does not
// echo it back, and unknown fields render empty.
func TestDecorate_FieldFallbacks(t *testing.T) {
	source := &mockSource{fields: map[string]map[string]string{
		"2001:db8::1": {"country": "NL"},
	}}
	d := NewDecorator(mustTemplate(t, "{ip}|{country}|{missing}"), source, NewCache())

	got := d.Decorate(context.Background(), netip.MustParseAddr("2001:db8::1"), []byte("2001:db8::1"))
	if got != "2001:db8::1|NL|" {
		t.Errorf("Decorate = %q, want %q", got, "2001:db8::1|NL|")
	}
}

func TestDecorate_CachesByRawText(t *testing.T) {
	metrics := newMockMetrics()
	source := &mockSource{fields: map[string]map[string]string{
		"8.8.8.8": {"country": "US"},
	}}
	d := NewDecorator(mustTemplate(t, "{ip}|{country}"), source, NewCache(),
		WithDecoratorMetrics(metrics))

	ctx := context.Background()
	addr := netip.MustParseAddr("8.8.8.8")
	raw := []byte("8.8.8.8")

	for i := 0; i < 5; i++ {
		if got := d.Decorate(ctx, addr, raw); got != "8.8.8.8|US" {
			t.Fatalf("Decorate = %q", got)
		}
	}

	if source.lookups != 1 {
		t.Errorf("source queried %d times, want 1", source.lookups)
	}
	if metrics.cacheMisses != 1 {
		t.Errorf("cache misses = %d, want 1", metrics.cacheMisses)
	}
	if metrics.cacheHits != 4 {
		t.Errorf("cache hits = %d, want 4", metrics.cacheHits)
	}
}

func TestDecorate_LookupFailureFallsBackToRaw(t *testing.T) {
	metrics := newMockMetrics()
	logger := &mockLogger{}
	source := &mockSource{err: errors.New("database unavailable")}
	d := NewDecorator(mustTemplate(t, "<{ip}>"), source, NewCache(),
		WithDecoratorLogger(logger),
		WithDecoratorMetrics(metrics))

	ctx := context.Background()
	addr := netip.MustParseAddr("8.8.8.8")
	raw := []byte("8.8.8.8")

	if got := d.Decorate(ctx, addr, raw); got != "8.8.8.8" {
		t.Errorf("Decorate = %q, want raw fallback %q", got, "8.8.8.8")
	}

	// The failure is cached too, so a repeating address fails only once.
	if got := d.Decorate(ctx, addr, raw); got != "8.8.8.8" {
		t.Errorf("second Decorate = %q, want %q", got, "8.8.8.8")
	}
	if source.lookups != 1 {
		t.Errorf("source queried %d times, want 1", source.lookups)
	}
	if metrics.lookupFailures != 1 {
		t.Errorf("lookup failures = %d, want 1", metrics.lookupFailures)
	}
	if logger.warningCount() != 1 {
		t.Errorf("warnings logged = %d, want 1", logger.warningCount())
	}
}

func TestDecorate_RoutableOnly(t *testing.T) {
	source := &mockSource{fields: map[string]map[string]string{
		"8.8.8.8":  {"country": "US"},
		"10.0.0.1": {"country": "XX"},
	}}
	routable := func(addr netip.Addr) bool {
		return !addr.IsPrivate()
	}
	d := NewDecorator(mustTemplate(t, "{ip}|{country}"), source, NewCache(),
		RoutableOnly(routable))

	ctx := context.Background()

	if got := d.Decorate(ctx, netip.MustParseAddr("8.8.8.8"), []byte("8.8.8.8")); got != "8.8.8.8|US" {
		t.Errorf("routable Decorate = %q, want %q", got, "8.8.8.8|US")
	}
	if got := d.Decorate(ctx, netip.MustParseAddr("10.0.0.1"), []byte("10.0.0.1")); got != "10.0.0.1" {
		t.Errorf("non-routable Decorate = %q, want raw passthrough", got)
	}
	if source.lookups != 1 {
		t.Errorf("source queried %d times, want 1", source.lookups)
	}
}
