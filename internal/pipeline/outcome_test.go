package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillsync/profile-builder/internal/ingestion"
	"github.com/skillsync/profile-builder/internal/parsing"
	"github.com/skillsync/profile-builder/internal/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    ErrorKind
		status  int
		message string
	}{
		{
			name:    "validation with detail",
			err:     &validation.ValidationError{Reason: validation.ReasonUnsupportedExtension, Message: `".exe" is not allowed`},
			kind:    KindValidation,
			status:  http.StatusBadRequest,
			message: `unsupported extension: ".exe" is not allowed`,
		},
		{
			name:    "content validation",
			err:     &validation.ContentValidationError{Reason: validation.ReasonNotResume},
			kind:    KindContentValidation,
			status:  http.StatusUnprocessableEntity,
			message: validation.ReasonNotResume,
		},
		{
			name:    "wrapped extraction",
			err:     fmt.Errorf("extracting: %w", &ingestion.ExtractionError{Kind: ingestion.KindEmptyDocument, Format: string(ingestion.FormatPDF)}),
			kind:    KindExtraction,
			status:  http.StatusUnprocessableEntity,
			message: string(ingestion.KindEmptyDocument),
		},
		{
			name:   "generation transport",
			err:    &parsing.ProfileGenerationError{Kind: parsing.FailureTransport, Message: "model call failed"},
			kind:   KindProfileGeneration,
			status: http.StatusBadGateway,
		},
		{
			name:   "generation invalid output",
			err:    &parsing.ProfileGenerationError{Kind: parsing.FailureInvalidOutput, Message: "not JSON"},
			kind:   KindProfileGeneration,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:    "cancelled",
			err:     fmt.Errorf("waiting for extraction worker: %w", context.Canceled),
			kind:    KindInternal,
			status:  http.StatusInternalServerError,
			message: internalMessage,
		},
		{
			name:    "unknown",
			err:     errors.New("disk on fire at /var/secret"),
			kind:    KindInternal,
			status:  http.StatusInternalServerError,
			message: internalMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(tt.err)
			assert.Equal(t, tt.kind, outcome.Kind)
			assert.Equal(t, tt.status, outcome.Status)
			if tt.message != "" {
				assert.Equal(t, tt.message, outcome.Message)
			}
		})
	}
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := &validation.ContentValidationError{Reason: validation.ReasonEmpty}
	err := &BuildError{RequestID: "req-1", Outcome: Classify(cause), Err: cause}

	var contentErr *validation.ContentValidationError
	assert.ErrorAs(t, err, &contentErr)
	assert.Contains(t, err.Error(), validation.ReasonEmpty)
}
