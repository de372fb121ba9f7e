// Package doc provides the block-structured document model for the editor.
//
// A Document is an ordered sequence of Blocks. Each Block has a kind
// (paragraph or heading) and an ordered list of inline Spans: text runs and
// inline line breaks. The document is the single source of truth for content;
// no render tree is ever consulted for offset math.
//
// Structural rules:
//
//   - A document is never empty. It degenerates to a single empty paragraph
//     rather than zero blocks.
//   - A block's content is never empty. An empty block holds one empty text
//     span so a cursor always has somewhere to attach.
//   - A block never changes kind in place. Kind conversion produces a new
//     Block carrying the old inline content; the old block is detached and
//     any operation on it fails with ErrStaleBlock.
//
// Basic usage:
//
//	d := doc.New()
//	b := d.Blocks()[0]
//	d.InsertTextAt(b, 0, "# Title")
//	left, right, err := d.SplitBlockAt(b, 2)
package doc
