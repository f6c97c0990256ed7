package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"full_name\": \"Jane\"}\n```",
			expected: `{"full_name": "Jane"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"full_name\": \"Jane\"}\n```",
			expected: `{"full_name": "Jane"}`,
		},
		{
			name:     "code block with other language",
			input:    "```javascript\n{\"full_name\": \"Jane\"}\n```",
			expected: `{"full_name": "Jane"}`,
		},
		{
			name:     "single line fence",
			input:    "```{\"full_name\": \"Jane\"}```",
			expected: `{"full_name": "Jane"}`,
		},
		{
			name:     "plain JSON with surrounding whitespace",
			input:    "\n  {\"full_name\": \"Jane\"}  \n",
			expected: `{"full_name": "Jane"}`,
		},
		{
			name:     "preamble is left alone",
			input:    "Here is the profile: {\"full_name\": \"Jane\"}",
			expected: "Here is the profile: {\"full_name\": \"Jane\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
