package ipmark

import (
	"io"
	"strings"
)

// Template is a pre-compiled decoration format.
//
// Templates use {field_name} syntax for field references. Use {{ for a
// literal '{' and }} for a literal '}'. The template string is parsed once
// into a sequence of literal and field parts; rendering is a single
// left-to-right pass that concatenates parts. Resolved values are never
// re-scanned for field references, so a value containing brace-like text
// cannot trigger a second substitution.
//
// Template instances are immutable and safe for concurrent use.
type Template struct {
	src   string
	parts []templatePart
	// sizeHint estimates rendered output length for allocation.
	sizeHint int
}

type templatePart struct {
	text  string
	field bool
}

// fieldSizeHint is the assumed rendered length of one field value.
const fieldSizeHint = 16

// CompileTemplate parses a template string.
//
// It returns a *TemplateError when a field reference is unterminated (an
// opening '{' with no matching '}') or when a field name is empty. The
// error carries the byte position of the offending brace.
func CompileTemplate(template string) (*Template, error) {
	t := &Template{src: template}

	var literal strings.Builder
	flushLiteral := func() {
		if literal.Len() > 0 {
			t.sizeHint += literal.Len()
			t.parts = append(t.parts, templatePart{text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(template) {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				literal.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return nil, &TemplateError{Pos: i, Reason: "unterminated field reference"}
			}
			if end == 0 {
				return nil, &TemplateError{Pos: i, Reason: "empty field name"}
			}
			flushLiteral()
			t.sizeHint += fieldSizeHint
			t.parts = append(t.parts, templatePart{text: template[i+1 : i+1+end], field: true})
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				literal.WriteByte('}')
				i += 2
				continue
			}
			literal.WriteByte('}')
			i++
		default:
			literal.WriteByte(c)
			i++
		}
	}
	flushLiteral()

	return t, nil
}

// Render substitutes field values resolved by the callback.
//
// The resolver receives a field name and returns the text to emit in its
// place; returning "" for unknown names is the conventional fallback.
func (t *Template) Render(resolve func(field string) string) string {
	var out strings.Builder
	out.Grow(t.sizeHint)
	for _, part := range t.parts {
		if part.field {
			out.WriteString(resolve(part.text))
		} else {
			out.WriteString(part.text)
		}
	}
	return out.String()
}

// Write renders directly to w. The resolver writes each field value itself,
// which avoids intermediate allocation for large outputs.
func (t *Template) Write(w io.Writer, resolve func(w io.Writer, field string) error) error {
	for _, part := range t.parts {
		if part.field {
			if err := resolve(w, part.text); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, part.text); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the field names referenced by the template, in order of
// first appearance of each part (duplicates preserved).
func (t *Template) Fields() []string {
	var fields []string
	for _, part := range t.parts {
		if part.field {
			fields = append(fields, part.text)
		}
	}
	return fields
}

// String returns the original template source.
func (t *Template) String() string {
	return t.src
}
