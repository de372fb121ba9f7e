// Package caret converts between the raw selection owned by the editing
// surface and logical positions that survive structural mutation of the
// document.
//
// A raw selection addresses a live render coordinate: (block, span, offset).
// It becomes meaningless the moment the block it references is replaced. A
// logical Position carries the same coordinate plus the machinery to remap it
// onto a replacement block at the equivalent inline offset, clamping to the
// end of content when the new content is shorter.
//
// The Tracker never touches the raw selection on its own; it reads and
// writes it only on explicit Capture and Restore calls issued by the
// structural editor. Restore failures are recoverable by design: the surface
// keeps focus and the caret degrades to a coarser placement, but the failure
// never propagates into the keystroke path.
package caret
