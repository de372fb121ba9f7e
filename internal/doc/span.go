package doc

import "fmt"

// SpanKind identifies the variant of an inline span.
type SpanKind uint8

const (
	// SpanText is a run of literal text.
	SpanText SpanKind = iota
	// SpanLineBreak is an inline break within a block. It does not create a
	// new block and consumes no inline offset positions.
	SpanLineBreak
)

// String returns the string representation of the span kind.
func (k SpanKind) String() string {
	switch k {
	case SpanText:
		return "Text"
	case SpanLineBreak:
		return "LineBreak"
	default:
		return fmt.Sprintf("SpanKind(%d)", uint8(k))
	}
}

// Span is a single inline content element of a block.
// Span is an immutable value type.
type Span struct {
	Kind SpanKind
	Text string // empty for SpanLineBreak
}

// TextSpan creates a text span.
func TextSpan(s string) Span {
	return Span{Kind: SpanText, Text: s}
}

// LineBreak creates an inline break span.
func LineBreak() Span {
	return Span{Kind: SpanLineBreak}
}

// Len returns the number of inline offset positions the span occupies.
// Line breaks are ordered objects but occupy zero inline positions.
func (s Span) Len() int {
	if s.Kind == SpanLineBreak {
		return 0
	}
	return len(s.Text)
}

// IsBreak returns true for inline break spans.
func (s Span) IsBreak() bool {
	return s.Kind == SpanLineBreak
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Kind == SpanLineBreak {
		return "LineBreak"
	}
	return fmt.Sprintf("Text(%q)", s.Text)
}

// spanText renders spans to a string with breaks as newlines.
func spanText(spans []Span) string {
	var n int
	for _, s := range spans {
		n += len(s.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		if s.Kind == SpanLineBreak {
			buf = append(buf, '\n')
			continue
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// spanInlineLen sums the inline lengths of spans.
func spanInlineLen(spans []Span) int {
	var n int
	for _, s := range spans {
		n += s.Len()
	}
	return n
}

// normalizeSpans rewrites content into canonical form: text spans and breaks
// strictly alternate, and the content starts and ends with a text span. An
// empty block therefore holds exactly one empty text span, the empty-line
// placeholder, and every break has a text span on both sides for the cursor
// to attach to.
func normalizeSpans(spans []Span) []Span {
	out := make([]Span, 0, len(spans)+2)
	for _, s := range spans {
		switch s.Kind {
		case SpanText:
			if len(out) > 0 && out[len(out)-1].Kind == SpanText {
				out[len(out)-1] = TextSpan(out[len(out)-1].Text + s.Text)
			} else {
				out = append(out, TextSpan(s.Text))
			}
		case SpanLineBreak:
			if len(out) == 0 || out[len(out)-1].Kind == SpanLineBreak {
				out = append(out, TextSpan(""))
			}
			out = append(out, LineBreak())
		}
	}
	if len(out) == 0 || out[len(out)-1].Kind == SpanLineBreak {
		out = append(out, TextSpan(""))
	}
	return out
}
