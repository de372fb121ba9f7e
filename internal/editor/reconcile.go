package editor

import (
	"strings"

	"github.com/marklight/marklight/internal/doc"
	"github.com/marklight/marklight/internal/event"
	"github.com/marklight/marklight/internal/logging"
)

// MatchesHeadingPrefix is the heading prefix rule: the block's trimmed text
// starts with "# " and not "## ". It is the single source of truth for
// whether a block should be a level-1 heading, recomputed from current
// content on every pass and never cached.
func MatchesHeadingPrefix(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "# ") && !strings.HasPrefix(t, "## ")
}

// reconcileNow runs one reconciliation pass. It is the debounce callback and
// serializes against key handling on the editor mutex.
func (e *Editor) reconcileNow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.reconcileLocked()
}

// reconcileLocked re-evaluates the heading prefix rule over every block and
// converts kinds where the predicate and the kind disagree. A conversion
// replaces the block instance in place: it never merges or splits blocks and
// never touches another block's content or position. Structural changes
// commit even when the subsequent cursor restore fails.
func (e *Editor) reconcileLocked() {
	converted := 0
	for _, b := range e.doc.Blocks() {
		match := MatchesHeadingPrefix(b.Text())

		var target doc.Kind
		switch {
		case b.Kind() == doc.Heading1 && !match:
			// Demotion is purely a kind change; any "#" still literally in
			// the text stays in the text.
			target = doc.Paragraph
		case b.Kind() == doc.Paragraph && match:
			target = doc.Heading1
		default:
			continue
		}

		nb, err := e.doc.ConvertBlockKind(b, target)
		if err != nil {
			// The block raced a structural edit: a missed cycle. The
			// predicate is recomputed from content next pass, so this
			// self-heals.
			e.log.Debug("reconcile skipped block", logging.FieldError, err)
			continue
		}

		e.tracker.Rebind(b, nb)
		e.bus.Publish(event.BlockConverted{
			OldID: b.ID(),
			NewID: nb.ID(),
			From:  b.Kind(),
			To:    nb.Kind(),
		})
		converted++
	}

	if converted == 0 {
		return
	}

	e.publishChanged()
	if _, ok := e.tracker.Current(); ok {
		if err := e.tracker.Restore(e.doc); err != nil {
			// Structural changes are committed; only the caret placement
			// degrades, to focus without a specific position.
			e.log.Warn("cursor restore after reconcile degraded", logging.FieldError, err)
			return
		}
		if pos, ok := e.tracker.Current(); ok {
			e.publishCursorMoved(pos)
		}
	}
}
