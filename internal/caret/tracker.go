package caret

import (
	"errors"
	"fmt"
	"sync"

	"github.com/marklight/marklight/internal/doc"
)

// Errors returned by tracker operations.
var (
	// ErrNoSelection indicates the surface has no raw selection to capture.
	ErrNoSelection = errors.New("no raw selection")

	// ErrRestoreFailed indicates the surface rejected the computed raw
	// selection. The tracker has already fallen back to focusing the surface.
	ErrRestoreFailed = errors.New("selection restore failed")
)

// Tracker maintains the logical cursor position across structural document
// mutations. All methods are safe for concurrent use; in practice the
// structural editor is the only caller.
type Tracker struct {
	mu      sync.Mutex
	sel     SelectionAPI
	current Position
	valid   bool
}

// NewTracker creates a tracker driving the given surface selection.
func NewTracker(sel SelectionAPI) *Tracker {
	return &Tracker{sel: sel}
}

// Current returns the last captured or restored logical position.
func (t *Tracker) Current() (Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.valid
}

// SetCurrent overrides the tracked position without touching the surface.
// Used when the editor computes a post-edit position directly.
func (t *Tracker) SetCurrent(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = pos
	t.valid = true
}

// Capture reads the raw selection and derives the logical position,
// clamping the raw coordinate onto the block's actual content.
func (t *Tracker) Capture(d *doc.Document) (Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, ok := t.sel.Selection()
	if !ok {
		return Position{}, ErrNoSelection
	}
	b, ok := d.BlockByID(raw.Block)
	if !ok {
		return Position{}, fmt.Errorf("captured block #%d: %w", raw.Block, doc.ErrStaleBlock)
	}

	span, off := resolveSpan(b, raw.Span, raw.Offset)

	t.current = Position{Block: b.ID(), Span: span, Offset: off}
	t.valid = true
	return t.current, nil
}

// Restore places the raw selection at the tracked position, collapsed. The
// offset is clamped to the end of content and snapped to a grapheme cluster
// boundary. If the block is gone or the surface rejects the placement, the
// surface is focused without a specific caret and an error is returned for
// logging; the error is never fatal to the caller's operation.
func (t *Tracker) Restore(d *doc.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid {
		t.sel.Focus()
		return ErrNoSelection
	}
	return t.restoreLocked(d, t.current)
}

// RestoreAt is Restore with an explicit position, which becomes the tracked
// position on success.
func (t *Tracker) RestoreAt(d *doc.Document, pos Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restoreLocked(d, pos)
}

func (t *Tracker) restoreLocked(d *doc.Document, pos Position) error {
	b, ok := d.BlockByID(pos.Block)
	if !ok {
		t.sel.Focus()
		return fmt.Errorf("restore block #%d: %w", pos.Block, doc.ErrStaleBlock)
	}

	span, off := resolveSpan(b, pos.Span, pos.Offset)
	if s, found := b.Span(span); found && s.Kind == doc.SpanText {
		off = snapToGrapheme(s.Text, off)
	}

	raw := RawSelection{Block: b.ID(), Span: span, Offset: off}
	if err := t.sel.SetSelection(raw); err != nil {
		t.sel.Focus()
		return fmt.Errorf("%w: %v", ErrRestoreFailed, err)
	}

	t.current = Position{Block: raw.Block, Span: raw.Span, Offset: raw.Offset}
	t.valid = true
	return nil
}

// resolveSpan validates a position against the block's content. A position
// naming an in-range offset of a text span is kept as-is: the two sides of
// an inline break are distinct placements and must survive a round trip.
// Invalid coordinates fall back to the inline offset, where Locate clamps
// and prefers the span after a break.
func resolveSpan(b *doc.Block, span, offset int) (int, int) {
	if s, ok := b.Span(span); ok && s.Kind == doc.SpanText && offset >= 0 && offset <= len(s.Text) {
		return span, offset
	}
	return b.Locate(b.InlineOffset(span, offset))
}

// Rebind remaps the tracked position from a replaced block onto its
// replacement at the equivalent inline offset, clamping when the new content
// is shorter. Positions referencing other blocks are untouched.
func (t *Tracker) Rebind(old, replacement *doc.Block) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid || t.current.Block != old.ID() {
		return
	}

	inline := old.InlineOffset(t.current.Span, t.current.Offset)
	if l := replacement.InlineLen(); inline > l {
		inline = l
	}
	t.current = PositionAtInline(replacement, inline)
}

// Invalidate drops the tracked position.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.valid = false
}
