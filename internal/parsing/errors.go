package parsing

import "fmt"

// FailureKind says whether a generation failure came from the model's output or the call itself
type FailureKind string

// Generation failure kinds
const (
	// FailureInvalidOutput means the model answered but the answer is not a valid profile
	FailureInvalidOutput FailureKind = "invalid output"
	// FailureTransport means the model call failed (network, quota, timeout, malformed response)
	FailureTransport FailureKind = "transport"
)

// ProfileGenerationError represents a failure to produce a profile from extracted text
type ProfileGenerationError struct {
	Kind    FailureKind
	Message string
	// Diagnostic is the raw JSON or schema parser message for invalid output
	Diagnostic string
	Cause      error
}

func (e *ProfileGenerationError) Error() string {
	msg := fmt.Sprintf("profile generation failed (%s): %s", e.Kind, e.Message)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	} else if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ProfileGenerationError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether the failure stems from the model call rather than its output
func (e *ProfileGenerationError) IsTransport() bool {
	return e.Kind == FailureTransport
}

func invalidOutput(message string, cause error) *ProfileGenerationError {
	err := &ProfileGenerationError{
		Kind:    FailureInvalidOutput,
		Message: message,
		Cause:   cause,
	}
	if cause != nil {
		err.Diagnostic = cause.Error()
	}
	return err
}
