package validation

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/skillsync/profile-builder/internal/config"
)

// FileDescriptor is the client-declared metadata of an upload. None of it is trusted.
type FileDescriptor struct {
	Filename    string
	Extension   string // optional; derived from Filename when empty
	ContentType string
	Size        int64
}

// Input is a build request before any file content has been read.
// Exactly one of File and Text must be set.
type Input struct {
	File *FileDescriptor
	Text string
}

// HasText reports whether pasted text was supplied
func (in Input) HasText() bool {
	return strings.TrimSpace(in.Text) != ""
}

// Ext returns the lowercase extension of the declared file
func (f *FileDescriptor) Ext() string {
	if f.Extension != "" {
		return config.NormalizeExtension(f.Extension)
	}
	return strings.ToLower(filepath.Ext(f.Filename))
}

// RequirePresence fails when neither a file nor non-blank text was supplied
func RequirePresence(in Input) error {
	if in.File == nil && !in.HasText() {
		return &ValidationError{
			Reason:  ReasonMissingInput,
			Message: "must provide either a resume file or profile text",
		}
	}
	return nil
}

// ValidateInput is the admission gate run before content is read into memory.
// It checks presence, extension, declared MIME type and declared size, in that order.
func ValidateInput(in Input, cfg *config.Config) error {
	if err := RequirePresence(in); err != nil {
		return err
	}
	hasFile := in.File != nil
	hasText := in.HasText()

	switch {
	case hasFile && hasText:
		return &ValidationError{
			Reason:  ReasonAmbiguousInput,
			Message: "provide a resume file or profile text, not both",
		}
	case hasText:
		return nil
	}

	return ValidateFile(in.File, cfg)
}

// ValidateFile applies the extension, MIME and declared-size checks to one file
func ValidateFile(f *FileDescriptor, cfg *config.Config) error {
	ext := f.Ext()
	if !slices.Contains(cfg.AllowedExtensions, ext) {
		return &ValidationError{
			Reason:  ReasonUnsupportedExtension,
			Message: fmt.Sprintf("%q is not allowed; allowed file types: %s", ext, strings.Join(cfg.AllowedExtensions, ", ")),
		}
	}

	mediaType := normalizeMediaType(f.ContentType)
	if !slices.Contains(cfg.AllowedMIMETypes, mediaType) {
		return &ValidationError{
			Reason:  ReasonUnsupportedContentType,
			Message: fmt.Sprintf("%q is not allowed; allowed content types: %s", f.ContentType, strings.Join(cfg.AllowedMIMETypes, ", ")),
		}
	}

	if f.Size > cfg.MaxDeclaredBytes() {
		return &ValidationError{
			Reason:  ReasonFileTooLarge,
			Message: fmt.Sprintf("%.2fMB exceeds the %gMB limit", float64(f.Size)/(1024*1024), cfg.MaxDeclaredSizeMB),
		}
	}

	return nil
}

// normalizeMediaType drops parameters such as charset and lowercases the type
func normalizeMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
