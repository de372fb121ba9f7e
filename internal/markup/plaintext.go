package markup

import (
	"strings"

	"github.com/marklight/marklight/internal/doc"
)

// FromPlainText builds a document from newline-delimited text, one paragraph
// per line. Empty input yields the one-empty-paragraph document.
func FromPlainText(text string) *doc.Document {
	if text == "" {
		return doc.New()
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	blocks := make([]*doc.Block, len(lines))
	for i, line := range lines {
		blocks[i] = doc.NewTextBlock(doc.Paragraph, line)
	}
	return doc.FromBlocks(blocks)
}

// ToPlainText flattens the document to newline-delimited text. Block
// boundaries and inline breaks both render as newlines; the distinction is
// not recoverable from the output.
func ToPlainText(d *doc.Document) string {
	return d.Text()
}
