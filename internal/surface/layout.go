package surface

import (
	"github.com/rivo/uniseg"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/doc"
)

// visualLine is one rendered row. A block spans one row per inline break
// plus one.
type visualLine struct {
	block *doc.Block
	text  string
}

// layoutDocument flattens the document into rows. Every block contributes at
// least one row, so an empty placeholder block still occupies a line.
func layoutDocument(d *doc.Document) []visualLine {
	var lines []visualLine
	for _, b := range d.Blocks() {
		var text string
		for _, s := range b.Spans() {
			if s.IsBreak() {
				lines = append(lines, visualLine{block: b, text: text})
				text = ""
				continue
			}
			text += s.Text
		}
		lines = append(lines, visualLine{block: b, text: text})
	}
	return lines
}

// caretCell resolves a selection to content coordinates: x is the display
// width of the text left of the caret on its row, y the row index.
func caretCell(d *doc.Document, raw caret.RawSelection) (x, y int, ok bool) {
	b, found := d.BlockByID(raw.Block)
	if !found {
		return 0, 0, false
	}

	row := 0
	for _, other := range d.Blocks() {
		if other.ID() == b.ID() {
			break
		}
		row += rowCount(other)
	}

	spans := b.Spans()
	if raw.Span < 0 || raw.Span >= len(spans) {
		return 0, 0, false
	}
	s := spans[raw.Span]
	if s.IsBreak() || raw.Offset < 0 || raw.Offset > len(s.Text) {
		return 0, 0, false
	}

	// Walk to the caret's row within the block and accumulate the width of
	// the text before it on that row.
	width := 0
	for i := 0; i < raw.Span; i++ {
		if spans[i].IsBreak() {
			row++
			width = 0
			continue
		}
		width += uniseg.StringWidth(spans[i].Text)
	}
	width += uniseg.StringWidth(s.Text[:raw.Offset])
	return width, row, true
}

// rowCount returns how many rows the block occupies.
func rowCount(b *doc.Block) int {
	rows := 1
	for _, s := range b.Spans() {
		if s.IsBreak() {
			rows++
		}
	}
	return rows
}
