package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/doc"
)

// ErrInvalidSelection reports a selection that does not resolve to a live
// position in the document.
var ErrInvalidSelection = errors.New("selection does not resolve")

var (
	styleParagraph = tcell.StyleDefault
	styleHeading1  = tcell.StyleDefault.Bold(true)
	styleHeading2  = tcell.StyleDefault.Bold(true).Dim(true)
	styleHeading3  = tcell.StyleDefault.Dim(true)
)

// Terminal is a tcell-backed surface. It owns the raw selection: the editor
// reads and writes caret state exclusively through it.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	d      *doc.Document
	raw    caret.RawSelection
	has    bool
	top    int // first visible content row
}

// NewTerminal creates a terminal surface over the document.
func NewTerminal(d *doc.Document) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return &Terminal{screen: screen, d: d}, nil
}

// NewTerminalWithScreen wires an existing screen, used with tcell's
// simulation screen in tests.
func NewTerminalWithScreen(d *doc.Document, screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, d: d}
}

// Init initializes the screen. Fini must be called before process exit.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	t.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
	return nil
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Selection returns the current raw selection.
func (t *Terminal) Selection() (caret.RawSelection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw, t.has
}

// SetSelection moves the caret. The position must resolve against the
// current document content.
func (t *Terminal) SetSelection(raw caret.RawSelection) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.d.BlockByID(raw.Block)
	if !ok {
		return fmt.Errorf("%w: unknown block %d", ErrInvalidSelection, raw.Block)
	}
	s, ok := b.Span(raw.Span)
	if !ok || s.IsBreak() || raw.Offset < 0 || raw.Offset > len(s.Text) {
		return fmt.Errorf("%w: span %d offset %d", ErrInvalidSelection, raw.Span, raw.Offset)
	}

	t.raw = raw
	t.has = true
	return nil
}

// Focus drops to a caret-less focused state: the selection is cleared and
// the next edit re-attaches at the document tail.
func (t *Terminal) Focus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.has = false
}

// CaretRect reports the caret's screen cell for the given selection.
func (t *Terminal) CaretRect(raw caret.RawSelection) (caret.Rect, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	x, y, ok := caretCell(t.d, raw)
	if !ok {
		return caret.Rect{}, false
	}
	return caret.Rect{X: x, Y: y - t.top, Width: 1, Height: 1}, true
}

// Render draws the document and caret.
func (t *Terminal) Render() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, height := t.screen.Size()
	t.scrollToCaret(height)

	t.screen.Clear()
	lines := layoutDocument(t.d)
	for row := 0; row < height && t.top+row < len(lines); row++ {
		line := lines[t.top+row]
		style := styleFor(line.block.Kind())
		x := 0
		for _, r := range line.text {
			t.screen.SetContent(x, row, r, nil, style)
			x += runeWidth(r)
		}
	}

	if t.has {
		if x, y, ok := caretCell(t.d, t.raw); ok && y >= t.top && y-t.top < height {
			t.screen.ShowCursor(x, y-t.top)
		} else {
			t.screen.HideCursor()
		}
	} else {
		t.screen.HideCursor()
	}
	t.screen.Show()
}

// scrollToCaret adjusts the viewport so the caret row is visible.
func (t *Terminal) scrollToCaret(height int) {
	if !t.has || height <= 0 {
		return
	}
	_, y, ok := caretCell(t.d, t.raw)
	if !ok {
		return
	}
	if y < t.top {
		t.top = y
	}
	if y >= t.top+height {
		t.top = y - height + 1
	}
}

func styleFor(k doc.Kind) tcell.Style {
	switch k {
	case doc.Heading1:
		return styleHeading1
	case doc.Heading2:
		return styleHeading2
	case doc.Heading3:
		return styleHeading3
	default:
		return styleParagraph
	}
}

func runeWidth(r rune) int {
	if w := uniseg.StringWidth(string(r)); w > 0 {
		return w
	}
	return 1
}
