package doc

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Revision uniquely identifies a document state.
// Every structural or content mutation produces a new revision.
type Revision uint64

// revisionCounter generates unique revision IDs.
var revisionCounter uint64

func nextRevision() Revision {
	return Revision(atomic.AddUint64(&revisionCounter, 1))
}

// Document is an ordered sequence of blocks in reading order.
// All methods are safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	blocks   []*Block
	revision Revision
}

// New creates a document holding a single empty paragraph.
func New() *Document {
	return FromBlocks(nil)
}

// FromBlocks creates a document from the given blocks. An empty slice
// degenerates to a single empty paragraph; the document is never empty.
func FromBlocks(blocks []*Block) *Document {
	if len(blocks) == 0 {
		blocks = []*Block{NewBlock(Paragraph)}
	}
	owned := make([]*Block, len(blocks))
	copy(owned, blocks)
	return &Document{
		blocks:   owned,
		revision: nextRevision(),
	}
}

// Revision returns the current document revision.
func (d *Document) Revision() Revision {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// BlockCount returns the number of blocks.
func (d *Document) BlockCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.blocks)
}

// Blocks returns a copy of the block sequence in reading order.
func (d *Document) Blocks() []*Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockAt returns the block at the given sequence index.
func (d *Document) BlockAt(i int) (*Block, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.blocks) {
		return nil, false
	}
	return d.blocks[i], true
}

// BlockByID returns the block with the given identity.
func (d *Document) BlockByID(id BlockID) (*Block, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, b := range d.blocks {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

// IndexOf returns the sequence index of the block, or -1 if it is not part
// of the document.
func (d *Document) IndexOf(b *Block) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indexLocked(b)
}

func (d *Document) indexLocked(b *Block) int {
	for i, cur := range d.blocks {
		if cur == b {
			return i
		}
	}
	return -1
}

// checkAttached validates that b is a live member of the document.
func (d *Document) checkAttached(b *Block) (int, error) {
	if b == nil {
		return -1, ErrNilBlock
	}
	if b.detached {
		return -1, fmt.Errorf("block #%d: %w", b.id, ErrStaleBlock)
	}
	idx := d.indexLocked(b)
	if idx < 0 {
		return -1, fmt.Errorf("block #%d: %w", b.id, ErrBlockNotFound)
	}
	return idx, nil
}

// InsertBlockAfter inserts nb immediately after the given block.
func (d *Document) InsertBlockAfter(after, nb *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.checkAttached(after)
	if err != nil {
		return err
	}
	if nb == nil {
		return ErrNilBlock
	}

	d.blocks = append(d.blocks, nil)
	copy(d.blocks[idx+2:], d.blocks[idx+1:])
	d.blocks[idx+1] = nb
	d.revision = nextRevision()
	return nil
}

// AppendBlock adds a block at the end of the sequence.
func (d *Document) AppendBlock(nb *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if nb == nil {
		return ErrNilBlock
	}
	d.blocks = append(d.blocks, nb)
	d.revision = nextRevision()
	return nil
}

// ReplaceBlock swaps old for nb in the same sequence position. The old block
// is detached; content and positions of every other block are untouched.
func (d *Document) ReplaceBlock(old, nb *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.checkAttached(old)
	if err != nil {
		return err
	}
	if nb == nil {
		return ErrNilBlock
	}

	d.blocks[idx] = nb
	old.detached = true
	d.revision = nextRevision()
	return nil
}

// RemoveBlock detaches a block from the sequence. Removing the last block
// leaves a single empty paragraph; the document is never empty.
func (d *Document) RemoveBlock(b *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.checkAttached(b)
	if err != nil {
		return err
	}

	d.blocks = append(d.blocks[:idx], d.blocks[idx+1:]...)
	b.detached = true
	if len(d.blocks) == 0 {
		d.blocks = []*Block{NewBlock(Paragraph)}
	}
	d.revision = nextRevision()
	return nil
}

// SplitBlockAt divides a block at an inline offset into two new blocks that
// replace it in sequence. The left block keeps the origin kind pending the
// next reconciliation pass; the right block is always a provisional
// paragraph. The split is byte-lossless: the concatenated content of the two
// halves is identical to the original, leading whitespace on the right
// included. An inline break sitting exactly on the boundary stays left.
//
// An empty right portion yields a right block holding the empty-line
// placeholder. The original block is detached.
func (d *Document) SplitBlockAt(b *Block, inline int) (left, right *Block, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.checkAttached(b)
	if err != nil {
		return nil, nil, err
	}

	leftSpans, rightSpans, err := b.splitSpansAt(inline)
	if err != nil {
		return nil, nil, err
	}

	left = NewBlock(b.kind, leftSpans...)
	right = NewBlock(Paragraph, rightSpans...)

	d.blocks = append(d.blocks, nil)
	copy(d.blocks[idx+2:], d.blocks[idx+1:])
	d.blocks[idx] = left
	d.blocks[idx+1] = right
	b.detached = true
	d.revision = nextRevision()
	return left, right, nil
}

// ConvertBlockKind replaces a block with a new block of the given kind
// carrying the same inline content. Conversion never merges or splits blocks
// and never touches any other block. Returns the replacement block.
func (d *Document) ConvertBlockKind(b *Block, kind Kind) (*Block, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.checkAttached(b)
	if err != nil {
		return nil, err
	}
	if b.kind == kind {
		return b, nil
	}

	nb := b.withKind(kind)
	d.blocks[idx] = nb
	b.detached = true
	d.revision = nextRevision()
	return nb, nil
}

// InsertTextAt inserts text into a block at an inline offset.
func (d *Document) InsertTextAt(b *Block, inline int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.checkAttached(b); err != nil {
		return err
	}
	if inline < 0 || inline > b.InlineLen() {
		return fmt.Errorf("insert at %d in block of length %d: %w",
			inline, b.InlineLen(), ErrOffsetOutOfRange)
	}

	span, off := b.Locate(inline)
	s := b.spans[span]
	b.spans[span] = TextSpan(s.Text[:off] + text + s.Text[off:])
	d.revision = nextRevision()
	return nil
}

// DeleteTextRange removes inline content between two offsets in a block.
// Inline breaks strictly inside the range are removed as well.
func (d *Document) DeleteTextRange(b *Block, from, to int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.checkAttached(b); err != nil {
		return err
	}
	if from < 0 || to > b.InlineLen() || from > to {
		return fmt.Errorf("delete [%d,%d) in block of length %d: %w",
			from, to, b.InlineLen(), ErrOffsetOutOfRange)
	}
	if from == to {
		return nil
	}

	out := make([]Span, 0, len(b.spans))
	acc := 0
	for _, s := range b.spans {
		if s.Kind == SpanLineBreak {
			// A break survives unless it sits strictly inside the range.
			if acc <= from || acc >= to {
				out = append(out, s)
			}
			continue
		}
		start, end := acc, acc+len(s.Text)
		acc = end
		keepFrom := clamp(from, start, end) - start
		keepTo := clamp(to, start, end) - start
		out = append(out, TextSpan(s.Text[:keepFrom]+s.Text[keepTo:]))
	}
	b.spans = normalizeSpans(out)
	d.revision = nextRevision()
	return nil
}

// InsertLineBreakAt inserts an inline break at an inline offset in a block.
// The break is followed by the remainder of the content; a break at the end
// of the block gains an empty-line placeholder after it.
func (d *Document) InsertLineBreakAt(b *Block, inline int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.checkAttached(b); err != nil {
		return err
	}

	leftSpans, rightSpans, err := b.splitSpansAt(inline)
	if err != nil {
		return err
	}
	spans := make([]Span, 0, len(leftSpans)+1+len(rightSpans))
	spans = append(spans, leftSpans...)
	spans = append(spans, LineBreak())
	spans = append(spans, rightSpans...)
	b.spans = normalizeSpans(spans)
	d.revision = nextRevision()
	return nil
}

// RemoveLineBreakAt removes the inline break at the given span index.
// The surrounding text spans merge back together.
func (d *Document) RemoveLineBreakAt(b *Block, span int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.checkAttached(b); err != nil {
		return err
	}
	if span < 0 || span >= len(b.spans) || b.spans[span].Kind != SpanLineBreak {
		return fmt.Errorf("no inline break at span %d: %w", span, ErrOffsetOutOfRange)
	}

	spans := make([]Span, 0, len(b.spans)-1)
	spans = append(spans, b.spans[:span]...)
	spans = append(spans, b.spans[span+1:]...)
	b.spans = normalizeSpans(spans)
	d.revision = nextRevision()
	return nil
}

// MergeBlockInto appends src's inline content to dst and removes src from
// the sequence. dst keeps its kind and identity; src is detached.
func (d *Document) MergeBlockInto(dst, src *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dstIdx, err := d.checkAttached(dst)
	if err != nil {
		return err
	}
	srcIdx, err := d.checkAttached(src)
	if err != nil {
		return err
	}
	if dstIdx == srcIdx {
		return fmt.Errorf("merge block #%d into itself: %w", src.id, ErrBlockNotFound)
	}

	merged := make([]Span, 0, len(dst.spans)+len(src.spans))
	merged = append(merged, dst.spans...)
	merged = append(merged, src.spans...)
	dst.spans = normalizeSpans(merged)

	d.blocks = append(d.blocks[:srcIdx], d.blocks[srcIdx+1:]...)
	src.detached = true
	d.revision = nextRevision()
	return nil
}

// Text returns the whole document with blocks joined by newlines and inline
// breaks rendered as newlines.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
