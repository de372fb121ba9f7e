package editor

import (
	"testing"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/input/key"
)

func press(e *Editor, k key.Key) {
	e.HandleKey(key.NewSpecialEvent(k, key.ModNone))
}

func TestMoveLeftRightWithinSpan(t *testing.T) {
	e, fs := newTestEditor(t, "héllo", 0)
	defer e.Close()

	press(e, key.KeyRight)
	if fs.raw.Offset != 1 {
		t.Errorf("offset = %d, want 1", fs.raw.Offset)
	}
	press(e, key.KeyRight)
	if fs.raw.Offset != 3 {
		t.Errorf("offset after multibyte rune = %d, want 3", fs.raw.Offset)
	}
	press(e, key.KeyLeft)
	if fs.raw.Offset != 1 {
		t.Errorf("offset = %d, want 1", fs.raw.Offset)
	}
}

func TestMoveAcrossInlineBreak(t *testing.T) {
	e, fs := newTestEditor(t, "ab", 2)
	defer e.Close()
	e.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModShift))
	typeString(e, "cd")

	// Cursor is at the end of "cd". Walk back across the break.
	press(e, key.KeyLeft)
	press(e, key.KeyLeft)
	if fs.raw.Span != 2 || fs.raw.Offset != 0 {
		t.Fatalf("raw = %+v, want span 2 offset 0", fs.raw)
	}
	press(e, key.KeyLeft)
	if fs.raw.Span != 0 || fs.raw.Offset != 2 {
		t.Errorf("crossing the break lands at end of previous row, got %+v", fs.raw)
	}
	press(e, key.KeyRight)
	if fs.raw.Span != 2 || fs.raw.Offset != 0 {
		t.Errorf("crossing forward lands at start of next row, got %+v", fs.raw)
	}
}

func TestMoveAcrossBlocks(t *testing.T) {
	e, fs := newMultiBlockEditor(t, "one", "two")
	defer e.Close()
	first, _ := e.Document().BlockAt(0)
	second, _ := e.Document().BlockAt(1)
	fs.raw = caret.RawSelection{Block: first.ID(), Offset: 3}

	press(e, key.KeyRight)
	if fs.raw.Block != second.ID() || fs.raw.Offset != 0 {
		t.Errorf("right at block end enters next block, got %+v", fs.raw)
	}
	press(e, key.KeyLeft)
	if fs.raw.Block != first.ID() || fs.raw.Offset != 3 {
		t.Errorf("left at block start returns to previous block end, got %+v", fs.raw)
	}
}

func TestHomeEnd(t *testing.T) {
	e, fs := newTestEditor(t, "hello", 3)
	defer e.Close()

	press(e, key.KeyHome)
	if fs.raw.Offset != 0 {
		t.Errorf("home offset = %d", fs.raw.Offset)
	}
	press(e, key.KeyEnd)
	if fs.raw.Offset != 5 {
		t.Errorf("end offset = %d", fs.raw.Offset)
	}
}

func TestUpDownBetweenRowsAndBlocks(t *testing.T) {
	e, fs := newMultiBlockEditor(t, "long first", "ab")
	defer e.Close()
	first, _ := e.Document().BlockAt(0)
	second, _ := e.Document().BlockAt(1)
	fs.raw = caret.RawSelection{Block: first.ID(), Offset: 7}

	press(e, key.KeyDown)
	if fs.raw.Block != second.ID() || fs.raw.Offset != 2 {
		t.Errorf("down clamps to shorter row, got %+v", fs.raw)
	}
	press(e, key.KeyUp)
	if fs.raw.Block != first.ID() || fs.raw.Offset != 2 {
		t.Errorf("up keeps the clamped offset, got %+v", fs.raw)
	}
}

func TestUpDownWithinMultiRowBlock(t *testing.T) {
	e, fs := newTestEditor(t, "ab", 2)
	defer e.Close()
	e.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModShift))
	typeString(e, "wxyz")

	press(e, key.KeyUp)
	if fs.raw.Span != 0 || fs.raw.Offset != 2 {
		t.Errorf("up clamps into first row, got %+v", fs.raw)
	}
	press(e, key.KeyDown)
	if fs.raw.Span != 2 || fs.raw.Offset != 2 {
		t.Errorf("down returns to second row, got %+v", fs.raw)
	}
}

func TestMovementDoesNotScheduleReconcile(t *testing.T) {
	e, _ := newTestEditor(t, "# x", 1)
	defer e.Close()

	press(e, key.KeyRight)
	press(e, key.KeyHome)
	if e.debounce.IsPending() {
		t.Error("pure movement must not schedule a pass")
	}
}
