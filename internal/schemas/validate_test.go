package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_FieldPaths(t *testing.T) {
	v, err := NewValidator("person", `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		}
	}`)
	require.NoError(t, err)

	assert.NoError(t, v.Validate(`{"name": "test"}`))

	err = v.Validate(`{"age": "thirty"}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"(root)", "age"}, fields)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator("broken", `{"type": 12}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "broken")
}

func TestUserProfileValidator(t *testing.T) {
	v, err := NewUserProfileValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name:      "minimal profile",
			json:      `{"full_name": "Jane Doe"}`,
			wantError: false,
		},
		{
			name: "full profile with nulls",
			json: `{
				"full_name": "Jane Doe",
				"email": null,
				"skills": [{"name": "Go", "proficiency_level": 9, "verified": null}],
				"experience": [{"title": "Engineer", "company": "Acme", "start_date": "2019-01-01", "end_date": null}],
				"education": null,
				"certifications": [{"name": "CKA", "year": "2021"}],
				"social_links": [],
				"languages": [{"name": "English", "proficiency": "Native"}]
			}`,
			wantError: false,
		},
		{
			name:      "missing full name",
			json:      `{"email": "jane@example.com"}`,
			wantError: true,
		},
		{
			name:      "empty full name",
			json:      `{"full_name": ""}`,
			wantError: true,
		},
		{
			name:      "skills is an object",
			json:      `{"full_name": "Jane", "skills": {"name": "Go"}}`,
			wantError: true,
		},
		{
			name:      "experience item is a string",
			json:      `{"full_name": "Jane", "experience": ["Engineer at Acme"]}`,
			wantError: true,
		},
		{
			name:      "root is an array",
			json:      `[{"full_name": "Jane"}]`,
			wantError: true,
		},
		{
			name:      "not JSON",
			json:      `{full_name: Jane`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.json)
			if tt.wantError {
				require.Error(t, err)
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.NotEmpty(t, validationErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
