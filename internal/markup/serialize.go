package markup

import (
	"strings"

	"github.com/marklight/marklight/internal/doc"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// tagFor maps a block kind to its element name.
func tagFor(k doc.Kind) string {
	switch k {
	case doc.Heading1:
		return "h1"
	case doc.Heading2:
		return "h2"
	case doc.Heading3:
		return "h3"
	default:
		return "p"
	}
}

// Serialize renders the document in the markup contract, one element per
// block, newline-separated. An empty placeholder block renders as an empty
// element.
func Serialize(d *doc.Document) string {
	var sb strings.Builder
	for i, b := range d.Blocks() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		tag := tagFor(b.Kind())
		sb.WriteByte('<')
		sb.WriteString(tag)
		sb.WriteByte('>')
		for _, s := range b.Spans() {
			if s.IsBreak() {
				sb.WriteString("<br>")
				continue
			}
			sb.WriteString(escaper.Replace(s.Text))
		}
		sb.WriteString("</")
		sb.WriteString(tag)
		sb.WriteByte('>')
	}
	return sb.String()
}
