package ipmark

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCompileTemplate(t *testing.T) {
	resolve := func(field string) string {
		switch field {
		case "ip":
			return "8.8.8.8"
		case "country":
			return "US"
		case "city":
			return "Mountain_View"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "literal only",
			template: "no fields here",
			want:     "no fields here",
		},
		{
			name:     "single field",
			template: "{ip}",
			want:     "8.8.8.8",
		},
		{
			name:     "fields and literals",
			template: "{ip} is in {country}",
			want:     "8.8.8.8 is in US",
		},
		{
			name:     "adjacent fields",
			template: "{ip}{country}",
			want:     "8.8.8.8US",
		},
		{
			name:     "repeated field",
			template: "{ip} and {ip}",
			want:     "8.8.8.8 and 8.8.8.8",
		},
		{
			name:     "unknown field renders empty",
			template: "[{nonexistent}]",
			want:     "[]",
		},
		{
			name:     "escaped open brace",
			template: "{{ip}}",
			want:     "{ip}",
		},
		{
			name:     "escaped braces around field",
			template: "{{{ip}}}",
			want:     "{8.8.8.8}",
		},
		{
			name:     "lone close brace is literal",
			template: "a}b",
			want:     "a}b",
		},
		{
			name:     "angle bracket decoration",
			template: "<{ip}|{country}|{city}>",
			want:     "<8.8.8.8|US|Mountain_View>",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := CompileTemplate(tt.template)
			if err != nil {
				t.Fatalf("CompileTemplate(%q) failed: %v", tt.template, err)
			}
			if got := tmpl.Render(resolve); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestCompileTemplate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		pos      int
	}{
		{
			name:     "unterminated at start",
			template: "{ip",
			pos:      0,
		},
		{
			name:     "unterminated after literal",
			template: "prefix {ip",
			pos:      7,
		},
		{
			name:     "empty field name",
			template: "a{}b",
			pos:      1,
		},
		{
			name:     "unterminated after escaped brace",
			template: "{{x{y",
			pos:      3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTemplate(tt.template)
			if err == nil {
				t.Fatalf("CompileTemplate(%q) succeeded, want error", tt.template)
			}
			var terr *TemplateError
			if !errors.As(err, &terr) {
				t.Fatalf("error type = %T, want *TemplateError", err)
			}
			if terr.Pos != tt.pos {
				t.Errorf("error position = %d, want %d", terr.Pos, tt.pos)
			}
		})
	}
}

// A resolved value containing {field} syntax must be emitted verbatim, never
// re-scanned for substitutions.
func TestRender_NoDoubleSubstitution(t *testing.T) {
	tmpl, err := CompileTemplate("{a}")
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	got := tmpl.Render(func(field string) string {
		calls++
		return "{b}"
	})

	if got != "{b}" {
		t.Errorf("Render = %q, want %q", got, "{b}")
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
}

func TestTemplate_Fields(t *testing.T) {
	tmpl, err := CompileTemplate("<{ip}|AS{asnnum}_{asnorg}|{country_iso}|{city}>")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"ip", "asnnum", "asnorg", "country_iso", "city"}
	if got := tmpl.Fields(); !equalStrings(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestTemplate_Write(t *testing.T) {
	tmpl, err := CompileTemplate("{ip} -> {country}")
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	err = tmpl.Write(&sb, func(w io.Writer, field string) error {
		_, werr := io.WriteString(w, strings.ToUpper(field))
		return werr
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "IP -> COUNTRY" {
		t.Errorf("Write output = %q, want %q", got, "IP -> COUNTRY")
	}
}

func TestTemplate_String(t *testing.T) {
	const src = "{{literal}} {ip}"
	tmpl, err := CompileTemplate(src)
	if err != nil {
		t.Fatal(err)
	}
	if got := tmpl.String(); got != src {
		t.Errorf("String() = %q, want %q", got, src)
	}
}
