package caret

import (
	"errors"
	"testing"

	"github.com/marklight/marklight/internal/doc"
)

// fakeSurface is a headless SelectionAPI for tests.
type fakeSurface struct {
	raw        RawSelection
	has        bool
	focusCalls int
	failSet    bool
}

func (f *fakeSurface) Selection() (RawSelection, bool) { return f.raw, f.has }

func (f *fakeSurface) SetSelection(raw RawSelection) error {
	if f.failSet {
		return errors.New("surface rejected range")
	}
	f.raw = raw
	f.has = true
	return nil
}

func (f *fakeSurface) Focus() { f.focusCalls++ }

func (f *fakeSurface) CaretRect(RawSelection) (Rect, bool) { return Rect{}, false }

func singleBlockDoc(t *testing.T, text string) (*doc.Document, *doc.Block) {
	t.Helper()
	d := doc.New()
	b, _ := d.BlockAt(0)
	if err := d.InsertTextAt(b, 0, text); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return d, b
}

func TestCaptureRestoreIdentity(t *testing.T) {
	d, b := singleBlockDoc(t, "Hello world")
	fs := &fakeSurface{raw: RawSelection{Block: b.ID(), Span: 0, Offset: 5}, has: true}
	tr := NewTracker(fs)

	pos, err := tr.Capture(d)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if pos.Block != b.ID() || pos.Span != 0 || pos.Offset != 5 {
		t.Errorf("captured %v", pos)
	}

	if err := tr.Restore(d); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if fs.raw.Offset != 5 {
		t.Errorf("restored offset %d, want 5", fs.raw.Offset)
	}
}

func TestCaptureNoSelection(t *testing.T) {
	d, _ := singleBlockDoc(t, "text")
	tr := NewTracker(&fakeSurface{})

	if _, err := tr.Capture(d); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
}

func TestCaptureClampsRawOffset(t *testing.T) {
	d, b := singleBlockDoc(t, "abc")
	fs := &fakeSurface{raw: RawSelection{Block: b.ID(), Span: 0, Offset: 40}, has: true}
	tr := NewTracker(fs)

	pos, err := tr.Capture(d)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if pos.Offset != 3 {
		t.Errorf("expected clamp to 3, got %d", pos.Offset)
	}
}

func TestRebindAfterConversion(t *testing.T) {
	d, b := singleBlockDoc(t, "# Title")
	fs := &fakeSurface{raw: RawSelection{Block: b.ID(), Span: 0, Offset: 4}, has: true}
	tr := NewTracker(fs)
	if _, err := tr.Capture(d); err != nil {
		t.Fatal(err)
	}

	h, err := d.ConvertBlockKind(b, doc.Heading1)
	if err != nil {
		t.Fatal(err)
	}
	tr.Rebind(b, h)

	pos, ok := tr.Current()
	if !ok {
		t.Fatal("expected tracked position")
	}
	if pos.Block != h.ID() {
		t.Errorf("position still references old block")
	}
	if pos.Offset != 4 {
		t.Errorf("offset = %d, want 4", pos.Offset)
	}

	if err := tr.Restore(d); err != nil {
		t.Fatalf("restore after rebind: %v", err)
	}
	if fs.raw.Block != h.ID() || fs.raw.Offset != 4 {
		t.Errorf("raw selection = %+v", fs.raw)
	}
}

func TestRebindClampsShorterContent(t *testing.T) {
	d, b := singleBlockDoc(t, "# Title")
	tr := NewTracker(&fakeSurface{})
	tr.SetCurrent(Position{Block: b.ID(), Span: 0, Offset: 7})

	short := doc.NewTextBlock(doc.Paragraph, "abc")
	if err := d.ReplaceBlock(b, short); err != nil {
		t.Fatal(err)
	}
	tr.Rebind(b, short)

	pos, _ := tr.Current()
	if pos.Offset != 3 {
		t.Errorf("expected clamp to end of content, got %d", pos.Offset)
	}
}

func TestRebindIgnoresOtherBlocks(t *testing.T) {
	d, b := singleBlockDoc(t, "one")
	other := doc.NewTextBlock(doc.Paragraph, "two")
	if err := d.AppendBlock(other); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker(&fakeSurface{})
	tr.SetCurrent(Position{Block: b.ID(), Span: 0, Offset: 1})

	conv, err := d.ConvertBlockKind(other, doc.Heading1)
	if err != nil {
		t.Fatal(err)
	}
	tr.Rebind(other, conv)

	pos, _ := tr.Current()
	if pos.Block != b.ID() || pos.Offset != 1 {
		t.Errorf("unrelated position moved: %v", pos)
	}
}

func TestRestoreMissingBlockFocusesSurface(t *testing.T) {
	d, _ := singleBlockDoc(t, "text")
	fs := &fakeSurface{}
	tr := NewTracker(fs)
	tr.SetCurrent(Position{Block: doc.BlockID(99999), Span: 0, Offset: 0})

	err := tr.Restore(d)
	if !errors.Is(err, doc.ErrStaleBlock) {
		t.Errorf("expected ErrStaleBlock, got %v", err)
	}
	if fs.focusCalls != 1 {
		t.Errorf("expected focus fallback, got %d calls", fs.focusCalls)
	}
}

func TestRestoreRejectionFocusesSurface(t *testing.T) {
	d, b := singleBlockDoc(t, "text")
	fs := &fakeSurface{failSet: true}
	tr := NewTracker(fs)
	tr.SetCurrent(Position{Block: b.ID(), Span: 0, Offset: 2})

	err := tr.Restore(d)
	if !errors.Is(err, ErrRestoreFailed) {
		t.Errorf("expected ErrRestoreFailed, got %v", err)
	}
	if fs.focusCalls != 1 {
		t.Errorf("expected focus fallback, got %d calls", fs.focusCalls)
	}
}

func TestRestoreKeepsSidesOfInlineBreak(t *testing.T) {
	// "ab" <break> "cd": end of the first row and start of the second are
	// distinct placements at the same inline offset.
	d, b := singleBlockDoc(t, "ab")
	if err := d.InsertLineBreakAt(b, 2); err != nil {
		t.Fatal(err)
	}
	if err := d.InsertTextAt(b, 2, "cd"); err != nil {
		t.Fatal(err)
	}

	fs := &fakeSurface{}
	tr := NewTracker(fs)

	if err := tr.RestoreAt(d, Position{Block: b.ID(), Span: 0, Offset: 2}); err != nil {
		t.Fatalf("restore before break: %v", err)
	}
	if fs.raw.Span != 0 || fs.raw.Offset != 2 {
		t.Errorf("end of row before break collapsed to %+v", fs.raw)
	}

	pos, err := tr.Capture(d)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if pos.Span != 0 || pos.Offset != 2 {
		t.Errorf("capture moved the position across the break: %v", pos)
	}

	if err := tr.RestoreAt(d, Position{Block: b.ID(), Span: 2, Offset: 0}); err != nil {
		t.Fatalf("restore after break: %v", err)
	}
	if fs.raw.Span != 2 || fs.raw.Offset != 0 {
		t.Errorf("start of row after break = %+v", fs.raw)
	}

	// Out-of-range coordinates still fall back to the clamped round trip.
	if err := tr.RestoreAt(d, Position{Block: b.ID(), Span: 0, Offset: 99}); err != nil {
		t.Fatalf("restore past end: %v", err)
	}
	if fs.raw.Span != 2 || fs.raw.Offset != 0 {
		t.Errorf("clamped restore = %+v", fs.raw)
	}
}

func TestRestoreSnapsGraphemeBoundary(t *testing.T) {
	// "e" + combining acute accent is a single grapheme cluster of 3 bytes.
	d, b := singleBlockDoc(t, "éx")
	fs := &fakeSurface{}
	tr := NewTracker(fs)
	tr.SetCurrent(Position{Block: b.ID(), Span: 0, Offset: 2}) // mid-cluster

	if err := tr.Restore(d); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if fs.raw.Offset != 0 {
		t.Errorf("expected snap back to cluster start, got %d", fs.raw.Offset)
	}
}

func TestAbsoluteOffsetRoundTrip(t *testing.T) {
	d, b := singleBlockDoc(t, "one")
	second := doc.NewTextBlock(doc.Paragraph, "two three")
	if err := d.AppendBlock(second); err != nil {
		t.Fatal(err)
	}

	pos := Position{Block: second.ID(), Span: 0, Offset: 4}
	abs, err := AbsoluteOffset(d, pos)
	if err != nil {
		t.Fatalf("absolute offset: %v", err)
	}
	// "one" (3) + separator (1) + 4
	if abs != 8 {
		t.Errorf("abs = %d, want 8", abs)
	}

	back := PositionAt(d, abs)
	if back.Block != second.ID() || back.Offset != 4 {
		t.Errorf("round trip gave %v", back)
	}
	_ = b
}

func TestPositionAtClampsPastEnd(t *testing.T) {
	d, b := singleBlockDoc(t, "abc")
	pos := PositionAt(d, 1000)
	if pos.Block != b.ID() || pos.Offset != 3 {
		t.Errorf("expected clamp to document end, got %v", pos)
	}
}

func TestSnapToGrapheme(t *testing.T) {
	cases := []struct {
		s    string
		off  int
		want int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 99, 3},
		{"éx", 1, 0},
		{"éx", 3, 3},
		{"", 5, 0},
	}
	for _, tc := range cases {
		if got := snapToGrapheme(tc.s, tc.off); got != tc.want {
			t.Errorf("snapToGrapheme(%q, %d) = %d, want %d", tc.s, tc.off, got, tc.want)
		}
	}
}
