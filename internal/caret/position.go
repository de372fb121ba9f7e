package caret

import (
	"fmt"

	"github.com/marklight/marklight/internal/doc"
)

// Position is a logical cursor coordinate: a block identity, a span index
// within that block's content, and a byte offset within the span's text.
// Unlike a raw selection it can be remapped when its block is replaced.
type Position struct {
	Block  doc.BlockID
	Span   int
	Offset int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("Position(#%d, span %d, offset %d)", p.Block, p.Span, p.Offset)
}

// Inline resolves the position to an inline offset within its block.
// Returns false if the block is no longer part of the document.
func (p Position) Inline(d *doc.Document) (int, bool) {
	b, ok := d.BlockByID(p.Block)
	if !ok {
		return 0, false
	}
	return b.InlineOffset(p.Span, p.Offset), true
}

// PositionAtInline builds a position for an inline offset within a block,
// clamping to the end of content.
func PositionAtInline(b *doc.Block, inline int) Position {
	span, off := b.Locate(inline)
	return Position{Block: b.ID(), Span: span, Offset: off}
}

// RawSelection is the surface-owned collapsed selection coordinate. It
// mirrors Position structurally but carries no remapping semantics: a raw
// selection referencing a replaced block is simply stale.
type RawSelection struct {
	Block  doc.BlockID
	Span   int
	Offset int
}

// Rect is the bounding box of the caret on the rendered surface, in surface
// units (cells for a terminal, pixels for a graphical view).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// SelectionAPI is the surface contract the tracker drives. Implementations
// own the raw selection and the geometry of the rendered view.
type SelectionAPI interface {
	// Selection returns the current raw selection, if any.
	Selection() (RawSelection, bool)

	// SetSelection places the raw selection, collapsed.
	SetSelection(RawSelection) error

	// Focus gives the editable surface input focus without moving the
	// selection. Used as the degraded fallback when exact placement fails.
	Focus()

	// CaretRect reports the caret bounding box for a raw selection.
	// ok is false when the surface cannot compute geometry (headless).
	CaretRect(RawSelection) (rect Rect, ok bool)
}

// AbsoluteOffset flattens a position to a whole-document offset, counting
// one separator position per block boundary. Used by the full-content rescan
// and file-load paths, not by per-keystroke reconciliation.
func AbsoluteOffset(d *doc.Document, pos Position) (int, error) {
	abs := 0
	for _, b := range d.Blocks() {
		if b.ID() == pos.Block {
			return abs + b.InlineOffset(pos.Span, pos.Offset), nil
		}
		abs += b.InlineLen() + 1
	}
	return 0, fmt.Errorf("position %v: %w", pos, doc.ErrBlockNotFound)
}

// PositionAt maps a whole-document offset back to a position, clamping to
// the end of the document.
func PositionAt(d *doc.Document, abs int) Position {
	if abs < 0 {
		abs = 0
	}
	blocks := d.Blocks()
	acc := 0
	for _, b := range blocks {
		l := b.InlineLen()
		if abs <= acc+l {
			return PositionAtInline(b, abs-acc)
		}
		acc += l + 1
	}
	last := blocks[len(blocks)-1]
	return PositionAtInline(last, last.InlineLen())
}
