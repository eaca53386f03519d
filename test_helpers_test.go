package ipmark

import (
	"context"
	"sync"
	"testing"
)

// mockMetrics records every metrics call for assertion in tests.
type mockMetrics struct {
	mu             sync.Mutex
	matches        map[string]int
	cacheHits      int
	cacheMisses    int
	lookupFailures int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{matches: make(map[string]int)}
}

func (m *mockMetrics) RecordMatch(family string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[family]++
}

func (m *mockMetrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *mockMetrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

func (m *mockMetrics) RecordLookupFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupFailures++
}

func (m *mockMetrics) matchCount(family string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches[family]
}

// mockLogger records warning messages for assertion in tests.
type mockLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *mockLogger) WarnContext(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *mockLogger) warningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}

// mustExtractor builds an Extractor or fails the test.
func mustExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

// matchValues renders each match as the matched text for compact assertions.
func matchValues(buf []byte, matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(buf[m.Start:m.End])
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
