package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a model must return.
// It is rendered into prompts so the model sees field names, types,
// nullability, enums and length limits.
type ExtractionSchema struct {
	Name   string
	Fields []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // JSON-ish type hint, e.g. "string | null" or "[{...}]"
	Description string // Description for the LLM
	Required    bool
}

// Describe renders the schema as an annotated JSON skeleton
func (s ExtractionSchema) Describe() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, field := range s.Fields {
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, field.Type, requiredHint))
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// UserProfileSchema returns the extraction schema for resume profiles
func UserProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "UserProfile",
		Fields: []SchemaField{
			{Name: "full_name", Type: `"string"`, Description: "most prominent complete name near the top", Required: true},
			{Name: "email", Type: `"string" | null`, Description: "valid email address"},
			{Name: "headline", Type: `"string" | null`, Description: "max 100 characters"},
			{Name: "summary", Type: `"string" | null`, Description: "max 500 characters"},
			{Name: "location", Type: `"string" | null`},
			{
				Name:        "skills",
				Type:        `[{"name": "string", "proficiency_level": integer 1-5 | null, "verified": false}]`,
				Description: "always a list, possibly empty",
				Required:    true,
			},
			{
				Name:        "experience",
				Type:        `[{"title": "string", "company": "string", "start_date": "YYYY-MM-DD" | null, "end_date": "YYYY-MM-DD" | null, "description": "string" | null}]`,
				Description: "one entry per role",
				Required:    true,
			},
			{
				Name:        "education",
				Type:        `[{"degree": "string", "institution": "string", "start_date": "YYYY-MM-DD" | null, "end_date": "YYYY-MM-DD" | null, "description": "string" | null}]`,
				Description: "always a list, possibly empty",
				Required:    true,
			},
			{
				Name:        "certifications",
				Type:        `[{"name": "string", "authority": "string" | null, "year": integer | null, "credential_url": "URL" | null}]`,
				Description: "always a list, possibly empty",
				Required:    true,
			},
			{
				Name:        "social_links",
				Type:        `[{"type": "string", "url": "URL"}]`,
				Description: "type is e.g. linkedin, github, website",
				Required:    true,
			},
			{
				Name:        "languages",
				Type:        `[{"name": "string", "proficiency": "Basic" | "Fluent" | "Native" | null}]`,
				Description: "always a list, possibly empty",
				Required:    true,
			},
			{Name: "profile_photo_url", Type: `"URL" | null`},
			{Name: "resume_file_url", Type: `"URL" | null`},
			{Name: "video_intro_url", Type: `"URL" | null`},
		},
	}
}
