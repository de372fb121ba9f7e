package editor

import (
	"unicode/utf8"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/doc"
)

// Caret movement. Spans alternate text and break, so every visual row maps
// to exactly one text span; row navigation is span arithmetic.

func (e *Editor) moveLeft() {
	b, pos := e.cursorBlock()
	switch {
	case pos.Offset > 0:
		s, _ := b.Span(pos.Span)
		e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span, Offset: prevRuneBoundary(s.Text, pos.Offset)})
	case pos.Span > 0:
		s, _ := b.Span(pos.Span - 2)
		e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span - 2, Offset: len(s.Text)})
	default:
		if prev, ok := e.doc.BlockAt(e.doc.IndexOf(b) - 1); ok {
			e.moveCursor(endOfBlock(prev))
		}
	}
}

func (e *Editor) moveRight() {
	b, pos := e.cursorBlock()
	s, _ := b.Span(pos.Span)
	switch {
	case pos.Offset < len(s.Text):
		_, w := utf8.DecodeRuneInString(s.Text[pos.Offset:])
		e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span, Offset: pos.Offset + w})
	case pos.Span+2 < b.SpanCount():
		e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span + 2})
	default:
		if next, ok := e.doc.BlockAt(e.doc.IndexOf(b) + 1); ok {
			e.moveCursor(caret.Position{Block: next.ID()})
		}
	}
}

func (e *Editor) moveRowStart() {
	b, pos := e.cursorBlock()
	e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span})
}

func (e *Editor) moveRowEnd() {
	b, pos := e.cursorBlock()
	s, _ := b.Span(pos.Span)
	e.moveCursor(caret.Position{Block: b.ID(), Span: pos.Span, Offset: len(s.Text)})
}

func (e *Editor) moveUp() {
	b, pos := e.cursorBlock()
	if pos.Span >= 2 {
		e.moveCursor(clampToSpan(b, pos.Span-2, pos.Offset))
		return
	}
	if prev, ok := e.doc.BlockAt(e.doc.IndexOf(b) - 1); ok {
		e.moveCursor(clampToSpan(prev, prev.SpanCount()-1, pos.Offset))
	}
}

func (e *Editor) moveDown() {
	b, pos := e.cursorBlock()
	if pos.Span+2 < b.SpanCount() {
		e.moveCursor(clampToSpan(b, pos.Span+2, pos.Offset))
		return
	}
	if next, ok := e.doc.BlockAt(e.doc.IndexOf(b) + 1); ok {
		e.moveCursor(clampToSpan(next, 0, pos.Offset))
	}
}

// clampToSpan keeps the byte offset when hopping rows, clamped to the target
// row's length. Restore snaps it onto a grapheme boundary.
func clampToSpan(b *doc.Block, span, offset int) caret.Position {
	s, _ := b.Span(span)
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	return caret.Position{Block: b.ID(), Span: span, Offset: offset}
}

func endOfBlock(b *doc.Block) caret.Position {
	span := b.SpanCount() - 1
	s, _ := b.Span(span)
	return caret.Position{Block: b.ID(), Span: span, Offset: len(s.Text)}
}
