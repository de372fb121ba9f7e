package editor

import (
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/doc"
	"github.com/marklight/marklight/internal/event"
	"github.com/marklight/marklight/internal/input/key"
	"github.com/marklight/marklight/internal/logging"
)

// DefaultDebounceWindow is the quiet period before a reconciliation pass.
const DefaultDebounceWindow = 300 * time.Millisecond

// Option configures an Editor.
type Option func(*Editor)

// WithDebounceWindow sets the reconciliation debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(e *Editor) { e.window = d }
}

// WithLogger sets the editor's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithBus sets the event bus collaborator notifications are published on.
func WithBus(b *event.Bus) Option {
	return func(e *Editor) { e.bus = b }
}

// Editor executes structural edits against a single document on behalf of a
// single surface. One writer at a time: the surface event loop delivers keys
// sequentially, and the debounce timer serializes against it on the editor
// mutex, so no two structural edits ever interleave.
type Editor struct {
	mu       sync.Mutex
	doc      *doc.Document
	surface  caret.SelectionAPI
	tracker  *caret.Tracker
	bus      *event.Bus
	log      *log.Logger
	window   time.Duration
	debounce *Debouncer
	closed   bool
}

// New creates an editor over the document, driving the given surface.
func New(d *doc.Document, surface caret.SelectionAPI, opts ...Option) *Editor {
	e := &Editor{
		doc:     d,
		surface: surface,
		tracker: caret.NewTracker(surface),
		bus:     event.NewBus(),
		log:     logging.Default(),
		window:  DefaultDebounceWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.debounce = NewDebouncer(e.window, e.reconcileNow)
	return e
}

// Document returns the document under edit.
func (e *Editor) Document() *doc.Document { return e.doc }

// Tracker returns the cursor tracker. The file-load path uses it for
// whole-document cursor restoration.
func (e *Editor) Tracker() *caret.Tracker { return e.tracker }

// Bus returns the collaborator event bus.
func (e *Editor) Bus() *event.Bus { return e.bus }

// HandleKey interprets one key press. This is the error boundary of the
// editing session: contract violations are logged here and typing continues.
func (e *Editor) HandleKey(ev key.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("keystroke handler panic", logging.FieldKey, ev.String(), "panic", r)
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	switch {
	case ev.Key == key.KeyEnter && !ev.Modifiers.HasShift():
		e.splitAtCursor()
		// The left half may have lost its heading eligibility; the pass
		// re-checks it.
		e.debounce.Call()
	case ev.Key == key.KeyEnter:
		e.insertInlineBreak()
	case ev.Key == key.KeyBackspace:
		e.deleteBackward()
		e.debounce.Call()
	case ev.Key == key.KeyDelete:
		e.deleteForward()
		e.debounce.Call()
	case ev.Key == key.KeyLeft:
		e.moveLeft()
	case ev.Key == key.KeyRight:
		e.moveRight()
	case ev.Key == key.KeyUp:
		e.moveUp()
	case ev.Key == key.KeyDown:
		e.moveDown()
	case ev.Key == key.KeyHome:
		e.moveRowStart()
	case ev.Key == key.KeyEnd:
		e.moveRowEnd()
	case ev.IsChar() && !ev.Modifiers.HasCtrl() && !ev.Modifiers.HasAlt():
		e.insertRune(ev.Rune)
		e.debounce.Call()
	}
}

// Reconcile runs a reconciliation pass immediately, cancelling any pending
// debounced pass. Used by the file-load path and tests.
func (e *Editor) Reconcile() {
	e.debounce.Cancel()
	e.reconcileNow()
}

// Snapshot runs fn while no structural edit or reconciliation pass is in
// flight, for readers on other goroutines (autosave).
func (e *Editor) Snapshot(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Close flushes any pending reconciliation and stops the editor.
func (e *Editor) Close() {
	e.debounce.Flush()
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// cursorBlock resolves the current cursor to a live block and position.
// When the raw selection is missing or stale it synthesizes an attach point:
// the end of the last block.
func (e *Editor) cursorBlock() (*doc.Block, caret.Position) {
	pos, err := e.tracker.Capture(e.doc)
	if err == nil {
		if b, ok := e.doc.BlockByID(pos.Block); ok {
			return b, pos
		}
	}

	blocks := e.doc.Blocks()
	last := blocks[len(blocks)-1]
	pos = caret.PositionAtInline(last, last.InlineLen())
	e.tracker.SetCurrent(pos)
	return last, pos
}

// splitAtCursor handles Enter: a true paragraph break at the cursor.
func (e *Editor) splitAtCursor() {
	b, pos := e.cursorBlock()
	inline := b.InlineOffset(pos.Span, pos.Offset)

	_, right, err := e.doc.SplitBlockAt(b, inline)
	if err != nil {
		e.log.Error("block split failed", logging.FieldError, err)
		return
	}

	e.moveCursor(caret.PositionAtInline(right, 0))
	e.publishChanged()
}

// insertInlineBreak handles Shift+Enter: a break within the current block.
// It never triggers reconciliation.
func (e *Editor) insertInlineBreak() {
	b, pos := e.cursorBlock()
	inline := b.InlineOffset(pos.Span, pos.Offset)

	if err := e.doc.InsertLineBreakAt(b, inline); err != nil {
		e.log.Error("inline break failed", logging.FieldError, err)
		return
	}

	// Locate prefers the span after the break at this boundary, placing the
	// cursor immediately after it.
	e.moveCursor(caret.PositionAtInline(b, inline))
	e.publishChanged()
}

// insertRune handles a printable character, applying the
// auto-space-after-marker rule before the content can be reconciled.
func (e *Editor) insertRune(r rune) {
	b, pos := e.cursorBlock()
	inline := b.InlineOffset(pos.Span, pos.Offset)

	text := string(r)
	if e.wantsMarkerSpace(b, pos, r) {
		text = " " + text
	}

	if err := e.doc.InsertTextAt(b, inline, text); err != nil {
		e.log.Error("text insert failed", logging.FieldError, err)
		return
	}

	e.moveCursor(caret.PositionAtInline(b, inline+len(text)))
	e.publishChanged()
}

// wantsMarkerSpace reports whether inserting r at the cursor position lands
// a letter directly after a line-leading "#": the marker needs its space
// before the reconciliation predicate (which matches "# ", not "#") runs.
func (e *Editor) wantsMarkerSpace(b *doc.Block, pos caret.Position, r rune) bool {
	if !unicode.IsLetter(r) {
		return false
	}
	s, ok := b.Span(pos.Span)
	if !ok || s.Kind != doc.SpanText || pos.Offset < 1 {
		return false
	}
	if s.Text[pos.Offset-1] != '#' {
		return false
	}
	if pos.Offset == 1 {
		// The "#" opens its span. Spans alternate text and break, so every
		// text span starts a visual line: block start or right after a
		// break. Either way the marker is at line start.
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s.Text[:pos.Offset-1])
	return unicode.IsSpace(prev)
}

// deleteBackward removes the grapheme, inline break, or block boundary
// before the cursor.
func (e *Editor) deleteBackward() {
	b, pos := e.cursorBlock()

	switch {
	case pos.Offset > 0:
		s, _ := b.Span(pos.Span)
		cut := prevRuneBoundary(s.Text, pos.Offset)
		inline := b.InlineOffset(pos.Span, pos.Offset)
		width := pos.Offset - cut
		if err := e.doc.DeleteTextRange(b, inline-width, inline); err != nil {
			e.log.Error("delete failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(b, inline-width))

	case pos.Span > 0:
		// Cursor sits right after an inline break; remove it.
		inline := b.InlineOffset(pos.Span, pos.Offset)
		if err := e.doc.RemoveLineBreakAt(b, pos.Span-1); err != nil {
			e.log.Error("break removal failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(b, inline))

	default:
		// Block start: join with the previous block.
		idx := e.doc.IndexOf(b)
		if idx <= 0 {
			return
		}
		prev, _ := e.doc.BlockAt(idx - 1)
		junction := prev.InlineLen()
		if err := e.doc.MergeBlockInto(prev, b); err != nil {
			e.log.Error("block merge failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(prev, junction))
	}
	e.publishChanged()
}

// deleteForward removes the grapheme, inline break, or block boundary after
// the cursor.
func (e *Editor) deleteForward() {
	b, pos := e.cursorBlock()
	s, _ := b.Span(pos.Span)

	switch {
	case pos.Offset < len(s.Text):
		_, width := utf8.DecodeRuneInString(s.Text[pos.Offset:])
		inline := b.InlineOffset(pos.Span, pos.Offset)
		if err := e.doc.DeleteTextRange(b, inline, inline+width); err != nil {
			e.log.Error("delete failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(b, inline))

	case pos.Span < b.SpanCount()-1:
		// The next span is an inline break; remove it.
		inline := b.InlineOffset(pos.Span, pos.Offset)
		if err := e.doc.RemoveLineBreakAt(b, pos.Span+1); err != nil {
			e.log.Error("break removal failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(b, inline))

	default:
		// Block end: pull the next block up into this one.
		idx := e.doc.IndexOf(b)
		next, ok := e.doc.BlockAt(idx + 1)
		if !ok {
			return
		}
		junction := b.InlineLen()
		if err := e.doc.MergeBlockInto(b, next); err != nil {
			e.log.Error("block merge failed", logging.FieldError, err)
			return
		}
		e.moveCursor(caret.PositionAtInline(b, junction))
	}
	e.publishChanged()
}

// moveCursor restores the selection at pos and notifies the caret renderer.
// Restore failure is recoverable: the surface keeps focus, the move is
// logged, and the structural edit stands.
func (e *Editor) moveCursor(pos caret.Position) {
	if err := e.tracker.RestoreAt(e.doc, pos); err != nil {
		e.log.Warn("cursor restore degraded", logging.FieldError, err)
		return
	}
	e.publishCursorMoved(pos)
}

func (e *Editor) publishCursorMoved(pos caret.Position) {
	raw := caret.RawSelection{Block: pos.Block, Span: pos.Span, Offset: pos.Offset}
	rect, ok := e.surface.CaretRect(raw)
	e.bus.Publish(event.CursorMoved{Position: pos, Rect: rect, HasRect: ok})
}

func (e *Editor) publishChanged() {
	e.bus.Publish(event.DocumentChanged{Revision: e.doc.Revision()})
}

// prevRuneBoundary returns the byte offset of the rune preceding off in s.
func prevRuneBoundary(s string, off int) int {
	_, width := utf8.DecodeLastRuneInString(s[:off])
	return off - width
}
