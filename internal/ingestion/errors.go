package ingestion

import "fmt"

// ExtractionErrorKind distinguishes the ways a document can fail to yield text
type ExtractionErrorKind string

// Extraction failure kinds
const (
	KindUnsupportedExtension ExtractionErrorKind = "unsupported extension"
	KindInvalidEncoding      ExtractionErrorKind = "invalid encoding"
	KindEmptyDocument        ExtractionErrorKind = "empty document"
	KindCorruptDocument      ExtractionErrorKind = "corrupt document"
)

// ExtractionError represents a format-specific failure to extract text
type ExtractionError struct {
	Kind    ExtractionErrorKind
	Format  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extraction error (%s): %s", e.Format, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
