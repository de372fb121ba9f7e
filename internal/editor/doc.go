// Package editor implements the structural editor: it interprets key input
// as structural commands against the document model and keeps block kinds
// consistent with the heading prefix rule.
//
// Per keystroke:
//
//   - Enter splits the current block at the cursor. The left block keeps the
//     origin kind pending reconciliation; the right block is always a
//     provisional paragraph. The cursor moves to the start of the right block.
//   - Shift+Enter inserts an inline break within the current block, cursor
//     immediately after it. Inline breaks are exempt from reconciliation so a
//     heading can never be born from one line of a multi-line block.
//   - Printable characters insert at the cursor, with one special case: a
//     letter typed immediately after a line-leading "#" gets a space inserted
//     between the marker and the letter, before reconciliation can run.
//   - Backspace and Delete remove a grapheme, an inline break, or join
//     adjacent blocks, then schedule reconciliation like any content edit.
//
// Reconciliation is debounced: rapid keystrokes coalesce into a single pass
// that re-evaluates the heading prefix rule over every block, converting
// kinds where the predicate and the kind disagree. The predicate is
// recomputed from current content on every pass, never cached, so a missed
// cycle self-heals on the next one. Conversions replace block instances; the
// cursor is remapped onto replacements and restored, and only the restore
// step is allowed to fail (silently, with the surface keeping focus).
//
// Errors never escape HandleKey: contract violations from the document model
// are caught at the keystroke boundary and logged.
package editor
