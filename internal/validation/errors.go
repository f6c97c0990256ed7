// Package validation provides the admission checks applied to resume input before extraction.
package validation

import "fmt"

// Reasons reported by ValidateInput
const (
	ReasonMissingInput           = "missing input"
	ReasonAmbiguousInput         = "ambiguous input"
	ReasonUnsupportedExtension   = "unsupported extension"
	ReasonUnsupportedContentType = "unsupported content-type"
	ReasonFileTooLarge           = "file too large"
)

// ValidationError represents malformed or missing request input
//
//nolint:revive // ValidationError is the established name for this error kind
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// ContentValidationError represents file bytes that contradict their declared
// type or are implausible as a resume
type ContentValidationError struct {
	Reason string
}

func (e *ContentValidationError) Error() string {
	return fmt.Sprintf("content validation error: %s", e.Reason)
}
