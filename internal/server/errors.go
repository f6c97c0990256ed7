package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillsync/profile-builder/internal/pipeline"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// requestError is a malformed HTTP request, rejected before a build starts
type requestError struct {
	Status  int
	Message string
	Cause   error
}

func (e *requestError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *requestError) Unwrap() error {
	return e.Cause
}

// outcomeOf maps any handler error to the status and body the caller sees
func outcomeOf(err error) (int, errorBody) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.Status, errorBody{Error: string(pipeline.KindValidation), Message: reqErr.Message}
	}
	var buildErr *pipeline.BuildError
	outcome := pipeline.Classify(err)
	if errors.As(err, &buildErr) {
		outcome = buildErr.Outcome
	}
	return outcome.Status, errorBody{Error: string(outcome.Kind), Message: outcome.Message}
}

// errorResponse writes the mapped error and logs the full detail
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status, body := outcomeOf(err)
	var buildErr *pipeline.BuildError
	if errors.As(err, &buildErr) {
		w.Header().Set("X-Request-ID", buildErr.RequestID)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, body)
}
