package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillsync/profile-builder/internal/pipeline"
	"github.com/skillsync/profile-builder/internal/validation"
)

// Form fields accepted by the build endpoints
const (
	fieldFile = "file"
	fieldText = "profile_text"
)

// bodyOverhead is the multipart framing allowed on top of max_raw_bytes
const bodyOverhead = 1 << 20

// handleBuild runs one build and responds with the bare profile JSON
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	req, err := s.readBuildRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.builder.Build(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	w.Header().Set("X-Request-ID", result.RequestID)
	s.jsonResponse(w, http.StatusOK, result.Profile)
}

// handleBuildStream runs one build and reports every state change as a
// "state" event, followed by a final "profile" or "error" event.
func (s *Server) handleBuildStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.readBuildRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	req.Progress = func(event pipeline.StateEvent) {
		if err := sse.WriteEvent("state", event); err != nil {
			s.logger.Debug("dropping state event", zap.Error(err))
		}
	}

	result, err := s.builder.Build(r.Context(), req)
	if err != nil {
		_, body := outcomeOf(err)
		_ = sse.WriteEvent("error", body)
		return
	}
	_ = sse.WriteEvent("profile", result.Profile)
}

// readBuildRequest streams the multipart form into a build request. Choosing
// between file and text is left to the pipeline so both paths report the
// same validation errors. A file part is only read once its declared name
// and content type pass admission, and never past the declared-size ceiling.
func (s *Server) readBuildRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	limit := int64(s.cfg.MaxRawBytes) + bodyOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mr, err := r.MultipartReader()
	if err != nil {
		return pipeline.Request{}, &requestError{Status: http.StatusBadRequest, Message: "expected a multipart form", Cause: err}
	}

	var req pipeline.Request
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		if err != nil {
			return pipeline.Request{}, bodyError(err, limit)
		}

		switch {
		case part.FormName() == fieldText && req.Text == "":
			text, err := io.ReadAll(part)
			if err != nil {
				return pipeline.Request{}, bodyError(err, limit)
			}
			req.Text = string(text)
		case part.FormName() == fieldFile && part.FileName() != "" && req.File == nil:
			upload, admitted, err := s.readUpload(part)
			if err != nil {
				return pipeline.Request{}, bodyError(err, limit)
			}
			req.File = upload
			if !admitted {
				// the pipeline reports the rejection; the rest of the body is left unread
				return req, nil
			}
		}
		_ = part.Close()
	}
}

// readUpload checks the declared metadata of a file part before reading its
// content. A rejected upload comes back without data so the pipeline fails
// it with the same error a direct caller would get.
func (s *Server) readUpload(part *multipart.Part) (*pipeline.Upload, bool, error) {
	upload := &pipeline.Upload{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
	}
	descriptor := &validation.FileDescriptor{Filename: upload.Filename, ContentType: upload.ContentType}
	if err := validation.ValidateFile(descriptor, s.cfg); err != nil {
		return upload, false, nil
	}

	maxBytes := s.cfg.MaxDeclaredBytes()
	data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > maxBytes {
		upload.Size = maxBytes + 1
		return upload, false, nil
	}
	upload.Data = data
	upload.Size = int64(len(data))
	return upload, true, nil
}

// bodyError maps a failure while reading the request body
func bodyError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &validation.ValidationError{
			Reason:  validation.ReasonFileTooLarge,
			Message: fmt.Sprintf("request body exceeds %d bytes", limit),
		}
	}
	return &requestError{Status: http.StatusBadRequest, Message: "malformed multipart form", Cause: err}
}
