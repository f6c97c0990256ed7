// Package config provides configuration loading and validation for the profile builder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common MIME types accepted for resume uploads
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

const bytesPerMB = 1024 * 1024

// Config represents the profile builder configuration.
// It can be loaded from a JSON file; environment variables and CLI flags override it.
type Config struct {
	// Admission limits
	AllowedExtensions []string `json:"allowed_extensions,omitempty" validate:"min=1,dive,startswith=."`
	AllowedMIMETypes  []string `json:"allowed_mime_types,omitempty" validate:"min=1,dive,contains=/"`
	MaxDeclaredSizeMB float64  `json:"max_declared_size_mb,omitempty" validate:"gt=0"`

	// Content sniffing limits
	MaxRawBytes        int   `json:"max_raw_bytes,omitempty" validate:"gt=0,gtefield=MinRawBytes"`
	MinRawBytes        int   `json:"min_raw_bytes,omitempty" validate:"gte=0"`
	MinTextChars       int   `json:"min_text_chars,omitempty" validate:"gte=0"`
	SniffDocxNullBytes *bool `json:"sniff_docx_null_bytes,omitempty"`

	// Generation model
	APIKey          string  `json:"api_key,omitempty"`
	ModelName       string  `json:"model_name,omitempty" validate:"required"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"max_output_tokens,omitempty" validate:"gt=0"`

	// Runtime
	ExtractWorkers int  `json:"extract_workers,omitempty" validate:"gt=0"`
	Port           int  `json:"port,omitempty" validate:"gt=0,lte=65535"`
	Verbose        bool `json:"verbose,omitempty"`
}

// Default returns the configuration with every documented default applied
func Default() *Config {
	sniffDocx := true
	return &Config{
		AllowedExtensions:  []string{".pdf", ".doc", ".docx", ".txt"},
		AllowedMIMETypes:   []string{MIMEPDF, MIMEDOCX, MIMEText},
		MaxDeclaredSizeMB:  2,
		MaxRawBytes:        10 * bytesPerMB,
		MinRawBytes:        100,
		MinTextChars:       50,
		SniffDocxNullBytes: &sniffDocx,
		ModelName:          "gemini-2.5-flash",
		Temperature:        0,
		MaxOutputTokens:    2000,
		ExtractWorkers:     runtime.NumCPU(),
		Port:               8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Values absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
// Malformed numeric values are reported rather than silently ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PROFILE_MODEL"); v != "" {
		c.ModelName = v
	}
	if v := os.Getenv("PROFILE_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid PROFILE_MAX_OUTPUT_TOKENS: %w", err)
		}
		c.MaxOutputTokens = int32(n)
	}
	if v := os.Getenv("PROFILE_MAX_DECLARED_SIZE_MB"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROFILE_MAX_DECLARED_SIZE_MB: %w", err)
		}
		c.MaxDeclaredSizeMB = f
	}
	if v := os.Getenv("PROFILE_EXTRACT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROFILE_EXTRACT_WORKERS: %w", err)
		}
		c.ExtractWorkers = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Port = n
	}
	return nil
}

// Validate checks that the configuration has valid values.
// The API key is not checked here since only the generation step needs it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	// Extraction must be reproducible
	if c.Temperature != 0 {
		return fmt.Errorf("config error: 'temperature' is fixed at 0, got %v", c.Temperature)
	}
	return nil
}

// MaxDeclaredBytes converts the declared-size ceiling to bytes
func (c *Config) MaxDeclaredBytes() int64 {
	return int64(c.MaxDeclaredSizeMB * bytesPerMB)
}

// SniffDocx reports whether the null-byte check applies to .docx payloads
func (c *Config) SniffDocx() bool {
	return c.SniffDocxNullBytes == nil || *c.SniffDocxNullBytes
}

// NormalizeExtension lowercases ext and ensures a leading dot
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
