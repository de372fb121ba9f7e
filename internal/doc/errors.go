package doc

import "errors"

// Errors returned by document operations.
var (
	// ErrOffsetOutOfRange indicates an inline offset outside a block's content.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrStaleBlock indicates an operation on a block that has been detached
	// from its document (replaced, split, or removed).
	ErrStaleBlock = errors.New("stale block reference")

	// ErrBlockNotFound indicates a block that does not belong to the document.
	ErrBlockNotFound = errors.New("block not found in document")

	// ErrNilBlock indicates a nil block argument.
	ErrNilBlock = errors.New("nil block")
)
