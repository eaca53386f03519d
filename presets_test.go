package ipmark

import "testing"

func TestPresets(t *testing.T) {
	buf := []byte("8.8.8.8 10.0.0.1 ::1 2001:db8::1")

	tests := []struct {
		name   string
		preset Option
		want   []string
	}{
		{
			name:   "public only",
			preset: PresetPublicOnly(),
			want:   []string{"8.8.8.8", "2001:db8::1"},
		},
		{
			name:   "all addresses",
			preset: PresetAllAddresses(),
			want:   []string{"8.8.8.8", "10.0.0.1", "::1", "2001:db8::1"},
		},
		{
			name:   "ipv4 only",
			preset: PresetIPv4Only(),
			want:   []string{"8.8.8.8"},
		},
		{
			name:   "ipv6 only",
			preset: PresetIPv6Only(),
			want:   []string{"2001:db8::1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustExtractor(t, tt.preset)
			got := matchValues(buf, e.AppendMatches(nil, buf))
			if !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// Later options refine a preset.
func TestPresetComposition(t *testing.T) {
	buf := []byte("8.8.8.8 10.0.0.1 2001:db8::1")

	e := mustExtractor(t, PresetAllAddresses(), IPv6(false))
	got := matchValues(buf, e.AppendMatches(nil, buf))
	want := []string{"8.8.8.8", "10.0.0.1"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
