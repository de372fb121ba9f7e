package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/marklight/marklight/internal/doc"
)

var md = goldmark.New()

// FromMarkdown imports a markdown file as a document. ATX headings keep
// their literal "#" markers in the block text, so a level-1 heading arrives
// already satisfying the prefix rule and survives reconciliation. Container
// structure the document model does not represent (lists, quotes) is
// flattened: each nested leaf becomes its own block. Inline emphasis markers
// are not preserved.
func FromMarkdown(source []byte) *doc.Document {
	root := md.Parser().Parse(gtext.NewReader(source))

	var blocks []*doc.Block
	collectBlocks(root, source, &blocks)
	if len(blocks) == 0 {
		return doc.New()
	}
	return doc.FromBlocks(blocks)
}

// ToMarkdown renders the document as markdown text: blocks separated by
// blank lines, inline breaks as plain newlines. Heading markers are already
// literal block content, so no reconstruction happens on the way out.
func ToMarkdown(d *doc.Document) string {
	blocks := d.Blocks()
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func collectBlocks(n ast.Node, source []byte, blocks *[]*doc.Block) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch b := c.(type) {
		case *ast.Heading:
			*blocks = append(*blocks, headingBlock(b, source))
		case *ast.Paragraph, *ast.TextBlock:
			spans := inlineSpans(c, source)
			*blocks = append(*blocks, doc.NewBlock(doc.Paragraph, spans...))
		case *ast.FencedCodeBlock:
			*blocks = append(*blocks, linesBlock(b.Lines(), source))
		case *ast.CodeBlock:
			*blocks = append(*blocks, linesBlock(b.Lines(), source))
		case *ast.ThematicBreak:
			*blocks = append(*blocks, doc.NewTextBlock(doc.Paragraph, "---"))
		default:
			// Containers: descend and flatten.
			collectBlocks(c, source, blocks)
		}
	}
}

// headingBlock reconstructs the ATX marker in front of the heading's text.
// Levels beyond the model's enum degrade to paragraphs with the marker kept
// literally.
func headingBlock(h *ast.Heading, source []byte) *doc.Block {
	marker := doc.TextSpan(strings.Repeat("#", h.Level) + " ")
	spans := append([]doc.Span{marker}, inlineSpans(h, source)...)

	var kind doc.Kind
	switch h.Level {
	case 1:
		kind = doc.Heading1
	case 2:
		kind = doc.Heading2
	case 3:
		kind = doc.Heading3
	default:
		kind = doc.Paragraph
	}
	return doc.NewBlock(kind, spans...)
}

// linesBlock joins a leaf node's raw source lines with inline breaks.
func linesBlock(lines *gtext.Segments, source []byte) *doc.Block {
	var spans []doc.Span
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			spans = append(spans, doc.LineBreak())
		}
		seg := lines.At(i)
		line := string(seg.Value(source))
		spans = append(spans, doc.TextSpan(strings.TrimRight(line, "\n")))
	}
	return doc.NewBlock(doc.Paragraph, spans...)
}

func inlineSpans(n ast.Node, source []byte) []doc.Span {
	var spans []doc.Span
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		spans = appendInline(spans, c, source)
	}
	return spans
}

func appendInline(spans []doc.Span, n ast.Node, source []byte) []doc.Span {
	switch t := n.(type) {
	case *ast.Text:
		spans = append(spans, doc.TextSpan(string(t.Segment.Value(source))))
		if t.SoftLineBreak() || t.HardLineBreak() {
			spans = append(spans, doc.LineBreak())
		}
	case *ast.String:
		spans = append(spans, doc.TextSpan(string(t.Value)))
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			spans = appendInline(spans, c, source)
		}
	}
	return spans
}
