package event

import (
	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/doc"
)

// CursorMoved reports the caret's new bounding box after a restore.
// The rect is in surface units; HasRect is false on headless surfaces.
type CursorMoved struct {
	Position caret.Position
	Rect     caret.Rect
	HasRect  bool
}

// EventTopic implements Event.
func (CursorMoved) EventTopic() Topic { return TopicCursorMoved }

// DocumentChanged reports a document mutation.
type DocumentChanged struct {
	Revision doc.Revision
}

// EventTopic implements Event.
func (DocumentChanged) EventTopic() Topic { return TopicDocumentChanged }

// BlockConverted reports a kind conversion performed by reconciliation.
type BlockConverted struct {
	OldID doc.BlockID
	NewID doc.BlockID
	From  doc.Kind
	To    doc.Kind
}

// EventTopic implements Event.
func (BlockConverted) EventTopic() Topic { return TopicBlockConverted }
