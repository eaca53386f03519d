package ipmark

import (
	"encoding/json"
	"io"
	"unicode/utf8"
)

// Tag is one matched address within a unit of text: its literal value, its
// byte span in the original text, and the decoration to splice in.
type Tag struct {
	// Value is the address text exactly as found.
	Value string
	// Start and End delimit the half-open byte range [Start, End) in the
	// original text.
	Start int
	End   int
	// Decoration is the rendered replacement text. When empty, the inline
	// renderer emits the original bytes unchanged.
	Decoration string
}

// Tagged aggregates the tags found in one unit of input (a line or a whole
// file) together with the original text.
//
// Tags must be appended in scan order; the renderers rely on spans being
// sorted by start offset and non-overlapping, which holds by construction
// when tagging matches straight from Extractor.Scan.
type Tagged struct {
	text []byte
	tags []Tag
}

// NewTagged starts an empty aggregate over text. The text is referenced,
// not copied; it must not be mutated until the Tagged is discarded.
func NewTagged(text []byte) *Tagged {
	return &Tagged{text: text, tags: make([]Tag, 0, 4)}
}

// Tag appends a tag.
func (t *Tagged) Tag(tag Tag) {
	t.tags = append(t.tags, tag)
}

// Tags returns the tags appended so far.
func (t *Tagged) Tags() []Tag {
	return t.tags
}

// Text returns the original text.
func (t *Tagged) Text() []byte {
	return t.text
}

// WriteInline writes the text with each tag's decoration spliced in place
// of its span, copying all other bytes unchanged, in a single left-to-right
// pass over tags and text.
func (t *Tagged) WriteInline(w io.Writer) error {
	if len(t.tags) == 0 {
		_, err := w.Write(t.text)
		return err
	}

	last := 0
	for _, tag := range t.tags {
		if _, err := w.Write(t.text[last:tag.Start]); err != nil {
			return err
		}
		if tag.Decoration != "" {
			if _, err := io.WriteString(w, tag.Decoration); err != nil {
				return err
			}
		} else {
			if _, err := w.Write(t.text[tag.Start:tag.End]); err != nil {
				return err
			}
		}
		last = tag.End
	}

	_, err := w.Write(t.text[last:])
	return err
}

type tagJSON struct {
	Value string `json:"value"`
	Range [2]int `json:"range"`
}

type taggedJSON struct {
	Tags []tagJSON `json:"tags"`
	Data textData  `json:"data"`
}

type textData struct {
	Text string `json:"text"`
}

// MarshalJSON renders the structured form:
//
//	{"tags":[{"value":"1.1.1.1","range":[2,9]}],"data":{"text":"..."}}
//
// Ranges are half-open byte offsets into the original text. Decorations are
// deliberately not part of the structured form; position metadata is enough
// for a consumer to verify and re-decorate independently.
func (t *Tagged) MarshalJSON() ([]byte, error) {
	record := taggedJSON{
		Tags: make([]tagJSON, len(t.tags)),
		Data: textData{Text: textString(t.text)},
	}
	for i, tag := range t.tags {
		record.Tags[i] = tagJSON{Value: tag.Value, Range: [2]int{tag.Start, tag.End}}
	}
	return json.Marshal(record)
}

// WriteJSON writes the structured form followed by a newline.
func (t *Tagged) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(t)
}

// textString converts original bytes for JSON output, replacing invalid
// UTF-8 so the record stays serializable for binary-ish log lines.
func textString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return string([]rune(string(b)))
}
