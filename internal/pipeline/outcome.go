package pipeline

import (
	"errors"
	"net/http"

	"github.com/skillsync/profile-builder/internal/ingestion"
	"github.com/skillsync/profile-builder/internal/parsing"
	"github.com/skillsync/profile-builder/internal/validation"
)

// ErrorKind names a failure category a caller can branch on
type ErrorKind string

// Failure categories
const (
	KindValidation        ErrorKind = "validation_error"
	KindContentValidation ErrorKind = "content_validation_error"
	KindExtraction        ErrorKind = "extraction_error"
	KindProfileGeneration ErrorKind = "profile_generation_error"
	KindInternal          ErrorKind = "internal_error"
)

// internalMessage is the only detail callers see for unexpected failures
const internalMessage = "internal error"

// Outcome is the caller-visible mapping of a failure
type Outcome struct {
	Kind    ErrorKind
	Status  int
	Message string
}

// Classify maps a build error to its caller-visible outcome.
// Unknown errors become an opaque internal outcome; their details are only logged.
func Classify(err error) Outcome {
	var (
		validationErr *validation.ValidationError
		contentErr    *validation.ContentValidationError
		extractionErr *ingestion.ExtractionError
		generationErr *parsing.ProfileGenerationError
	)

	switch {
	case errors.As(err, &validationErr):
		return Outcome{Kind: KindValidation, Status: http.StatusBadRequest, Message: validationMessage(validationErr)}
	case errors.As(err, &contentErr):
		return Outcome{Kind: KindContentValidation, Status: http.StatusUnprocessableEntity, Message: contentErr.Reason}
	case errors.As(err, &extractionErr):
		return Outcome{Kind: KindExtraction, Status: http.StatusUnprocessableEntity, Message: extractionMessage(extractionErr)}
	case errors.As(err, &generationErr):
		if generationErr.IsTransport() {
			return Outcome{Kind: KindProfileGeneration, Status: http.StatusBadGateway, Message: "profile generation service unavailable"}
		}
		return Outcome{Kind: KindProfileGeneration, Status: http.StatusUnprocessableEntity, Message: "could not build a valid profile from this resume"}
	default:
		return Outcome{Kind: KindInternal, Status: http.StatusInternalServerError, Message: internalMessage}
	}
}

func validationMessage(err *validation.ValidationError) string {
	if err.Message != "" {
		return err.Reason + ": " + err.Message
	}
	return err.Reason
}

func extractionMessage(err *ingestion.ExtractionError) string {
	if err.Message != "" {
		return string(err.Kind) + ": " + err.Message
	}
	return string(err.Kind)
}
