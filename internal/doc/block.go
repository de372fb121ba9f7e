package doc

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies the structural variant of a block.
// The set is closed; switches over Kind are exhaustive.
type Kind uint8

const (
	// Paragraph is the default block kind.
	Paragraph Kind = iota
	// Heading1 is a level-1 heading.
	Heading1
	// Heading2 is a level-2 heading. Defined for markup fidelity; no prefix
	// rule currently activates it.
	Heading2
	// Heading3 is a level-3 heading. Defined for markup fidelity; no prefix
	// rule currently activates it.
	Heading3
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "Paragraph"
	case Heading1:
		return "Heading1"
	case Heading2:
		return "Heading2"
	case Heading3:
		return "Heading3"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsHeading returns true for any heading kind.
func (k Kind) IsHeading() bool {
	return k == Heading1 || k == Heading2 || k == Heading3
}

// BlockID uniquely identifies a block instance. Replacing a block (kind
// conversion, split) produces new instances with new IDs.
type BlockID uint64

// blockIDCounter generates unique block IDs.
var blockIDCounter uint64

func nextBlockID() BlockID {
	return BlockID(atomic.AddUint64(&blockIDCounter, 1))
}

// Block is an addressable structural unit of the document: a paragraph or a
// heading holding inline content. Blocks are created by the document model
// and identified by their BlockID; content mutation goes through Document
// methods so revisions stay consistent.
type Block struct {
	id       BlockID
	kind     Kind
	spans    []Span
	detached bool
}

// NewBlock creates a standalone block with the given kind and content.
// Content is normalized: an empty block holds the empty-line placeholder.
func NewBlock(kind Kind, spans ...Span) *Block {
	return &Block{
		id:    nextBlockID(),
		kind:  kind,
		spans: normalizeSpans(spans),
	}
}

// NewTextBlock creates a block holding a single text run.
func NewTextBlock(kind Kind, text string) *Block {
	return NewBlock(kind, TextSpan(text))
}

// ID returns the block's unique identity.
func (b *Block) ID() BlockID { return b.id }

// Kind returns the block's structural kind.
func (b *Block) Kind() Kind { return b.kind }

// Detached returns true if the block has been replaced or removed from its
// document. Operations on detached blocks fail with ErrStaleBlock.
func (b *Block) Detached() bool { return b.detached }

// Spans returns a copy of the block's inline content.
func (b *Block) Spans() []Span {
	out := make([]Span, len(b.spans))
	copy(out, b.spans)
	return out
}

// SpanCount returns the number of inline spans.
func (b *Block) SpanCount() int { return len(b.spans) }

// Span returns the span at the given index.
func (b *Block) Span(i int) (Span, bool) {
	if i < 0 || i >= len(b.spans) {
		return Span{}, false
	}
	return b.spans[i], true
}

// Text returns the block's full content with inline breaks rendered as
// newlines. This is the text the heading prefix rule is evaluated against.
func (b *Block) Text() string {
	return spanText(b.spans)
}

// InlineLen returns the total inline length of the block's content.
// Inline breaks occupy zero positions.
func (b *Block) InlineLen() int {
	return spanInlineLen(b.spans)
}

// Locate resolves an inline offset to a (span index, offset-within-span)
// pair, clamping to the end of content. When the offset falls on a boundary
// shared by several spans, the last text span is chosen, placing the cursor
// after any inline break at that offset.
func (b *Block) Locate(inline int) (span, offset int) {
	if inline < 0 {
		inline = 0
	}
	span, offset = 0, 0
	acc := 0
	for i, s := range b.spans {
		if s.Kind != SpanText {
			continue
		}
		l := len(s.Text)
		if inline >= acc && inline <= acc+l {
			span, offset = i, inline-acc
		}
		acc += l
	}
	if inline > acc {
		// Past end of content: clamp to end of the last text span.
		for i := len(b.spans) - 1; i >= 0; i-- {
			if b.spans[i].Kind == SpanText {
				return i, len(b.spans[i].Text)
			}
		}
	}
	return span, offset
}

// InlineOffset converts a (span index, offset-within-span) pair to an inline
// offset, clamping out-of-range values.
func (b *Block) InlineOffset(span, offset int) int {
	if span < 0 {
		return 0
	}
	acc := 0
	for i, s := range b.spans {
		if i == span {
			if offset < 0 {
				offset = 0
			}
			if offset > s.Len() {
				offset = s.Len()
			}
			return acc + offset
		}
		acc += s.Len()
	}
	return acc
}

// withKind returns a fresh block carrying the same content under a new kind.
func (b *Block) withKind(kind Kind) *Block {
	return NewBlock(kind, b.spans...)
}

// splitSpansAt divides the block's content at an inline offset. An inline
// break sitting exactly on the boundary stays with the left side.
func (b *Block) splitSpansAt(inline int) (left, right []Span, err error) {
	if inline < 0 || inline > b.InlineLen() {
		return nil, nil, fmt.Errorf("split at %d in block of length %d: %w",
			inline, b.InlineLen(), ErrOffsetOutOfRange)
	}
	acc := 0
	for _, s := range b.spans {
		switch {
		case s.Kind == SpanLineBreak:
			if acc <= inline {
				left = append(left, s)
			} else {
				right = append(right, s)
			}
		case acc+len(s.Text) <= inline:
			left = append(left, s)
			acc += len(s.Text)
		case acc >= inline:
			right = append(right, s)
			acc += len(s.Text)
		default:
			cut := inline - acc
			left = append(left, TextSpan(s.Text[:cut]))
			right = append(right, TextSpan(s.Text[cut:]))
			acc += len(s.Text)
		}
	}
	return normalizeSpans(left), normalizeSpans(right), nil
}

// String returns a human-readable representation of the block.
func (b *Block) String() string {
	return fmt.Sprintf("%s#%d(%q)", b.kind, b.id, b.Text())
}
