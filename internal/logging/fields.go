package logging

// Field name constants for structured logging.
const (
	FieldError = "error"
	FieldPath  = "path"
	FieldKey   = "key"
	FieldBlock = "block"
	FieldTopic = "topic"
)
