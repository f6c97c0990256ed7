package validation

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skillsync/profile-builder/internal/config"
)

// Reasons reported by SniffContent
const (
	ReasonEmpty            = "file is empty"
	ReasonTooSmall         = "file is too small"
	ReasonTooLarge         = "file is too large"
	ReasonBinaryContent    = "file appears to be binary/executable instead of text"
	ReasonImageContent     = "file appears to be an image instead of text"
	ReasonInvalidPDF       = "invalid PDF file format"
	ReasonIncompletePDF    = "PDF file appears to be incomplete or corrupted"
	ReasonInsufficientText = "file contains insufficient text content"
	ReasonNotResume        = "file content doesn't appear to be a resume"
)

// imageSignatures are leading byte sequences of common image formats
var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},                            // JPEG
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, // PNG
	[]byte("GIF87a"),                              // GIF
	[]byte("GIF89a"),                              // GIF
	[]byte("BM"),                                  // BMP
}

// ResumeKeywords is the coarse vocabulary used to decide content is resume-like
var ResumeKeywords = []string{
	"experience", "education", "skills", "work", "job",
	"university", "college", "degree", "certification",
}

var (
	pdfHeader  = []byte("%PDF-")
	pdfTrailer = []byte("%%EOF")
)

// SniffContent inspects the bytes actually received for a file with the given
// (already validated) extension. Checks run cheapest first and stop at the
// first failure. Passing is advisory, not proof of a valid resume.
func SniffContent(data []byte, ext string, cfg *config.Config) error {
	ext = config.NormalizeExtension(ext)

	if len(data) == 0 {
		return &ContentValidationError{Reason: ReasonEmpty}
	}
	if len(data) < cfg.MinRawBytes {
		return &ContentValidationError{Reason: fmt.Sprintf("%s (less than %d bytes)", ReasonTooSmall, cfg.MinRawBytes)}
	}
	if len(data) > cfg.MaxRawBytes {
		return &ContentValidationError{Reason: fmt.Sprintf("%s (more than %d bytes)", ReasonTooLarge, cfg.MaxRawBytes)}
	}

	if ext == ".txt" || (ext == ".docx" && cfg.SniffDocx()) {
		if bytes.IndexByte(data, 0x00) >= 0 {
			return &ContentValidationError{Reason: ReasonBinaryContent}
		}
	}

	if HasImageSignature(data) {
		return &ContentValidationError{Reason: ReasonImageContent}
	}

	if ext == ".pdf" {
		if !bytes.HasPrefix(data, pdfHeader) {
			return &ContentValidationError{Reason: ReasonInvalidPDF}
		}
		if !bytes.Contains(data, pdfTrailer) {
			return &ContentValidationError{Reason: ReasonIncompletePDF}
		}
	}

	if CountTextChars(data) < cfg.MinTextChars {
		return &ContentValidationError{Reason: ReasonInsufficientText}
	}

	if !ContainsResumeKeyword(data) {
		return &ContentValidationError{Reason: ReasonNotResume}
	}

	return nil
}

// HasImageSignature reports whether data starts with a known image magic number
func HasImageSignature(data []byte) bool {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// CountTextChars decodes data as UTF-8, ignoring invalid sequences, and counts
// the characters that are neither whitespace, control, nor in U+007F..U+00FF.
func CountTextChars(data []byte) int {
	count := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if unicode.IsSpace(r) || r <= 0x1f || (r >= 0x7f && r <= 0xff) {
			continue
		}
		count++
	}
	return count
}

// ContainsResumeKeyword reports whether any resume keyword occurs, case-insensitively
func ContainsResumeKeyword(data []byte) bool {
	text := strings.ToLower(strings.ToValidUTF8(string(data), ""))
	for _, keyword := range ResumeKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
