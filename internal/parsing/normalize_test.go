package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Golang to Go", "Golang", "Go"},
		{"GOLANG to Go", "GOLANG", "Go"},
		{"go lang to Go", "go lang", "Go"},
		{"JS to JavaScript", "JS", "JavaScript"},
		{"K8s to Kubernetes", "k8s", "Kubernetes"},
		{"nodejs to Node.js", "nodejs", "Node.js"},
		{"postgres to PostgreSQL", "Postgres", "PostgreSQL"},
		{"python to Python", "python", "Python"},
		{"PYTHON to Python", "PYTHON", "Python"},
		{"Empty string", "", ""},
		{"Whitespace only", "   ", ""},
		{"Multi-word stays as-is", "Distributed Systems", "Distributed Systems"},
		{"Mixed case single word", "GraphQL", "GraphQL"},
		{"Accented lowercase", "élixir", "Élixir"},
		{"Accented capitals", "ÉLIXIR", "Élixir"},
		{"No case", "日本語", "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkillName(tt.input))
		})
	}
}

func TestFindEmails(t *testing.T) {
	text := "John Doe\njohn.doe@corp.com | john123@freemail.example\nContact: JOHN.DOE@corp.com."

	assert.Equal(t, []string{"john.doe@corp.com", "john123@freemail.example"}, FindEmails(text))
	assert.Empty(t, FindEmails("no addresses here"))
}

func TestEmailScore(t *testing.T) {
	assert.Greater(t, EmailScore("john.doe@corp.com"), EmailScore("john123@freemail.example"))
	assert.Greater(t, EmailScore("jane@acme.io"), EmailScore("jane@gmail.com"))
	assert.Greater(t, EmailScore("jane.smith@acme.io"), EmailScore("info@acme.io"))
	assert.Equal(t, -100, EmailScore("not-an-email"))
}

func TestPreferProfessionalEmail(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		expected   string
	}{
		{"corporate over numbered freemail", []string{"john123@freemail.example", "john.doe@corp.com"}, "john.doe@corp.com"},
		{"tie keeps first", []string{"a.b@one.com", "c.d@two.com"}, "a.b@one.com"},
		{"single candidate", []string{"x99@gmail.com"}, "x99@gmail.com"},
		{"no candidates", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PreferProfessionalEmail(tt.candidates))
		})
	}
}
