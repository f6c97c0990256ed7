package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_EmptyListsSerializeAsArrays(t *testing.T) {
	profile := UserProfile{FullName: "Jane Doe"}
	profile.EnsureLists()

	data, err := json.Marshal(profile)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"skills", "experience", "education", "certifications", "social_links", "languages"} {
		value, ok := raw[key]
		require.True(t, ok, "%s should be present", key)
		assert.IsType(t, []any{}, value, "%s should be a list", key)
	}
	assert.Nil(t, raw["email"])
	assert.Contains(t, raw, "video_intro_url")
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2019, time.March, 1)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2019-03-01"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, d.Equal(decoded.Time))
}

func TestDate_UnmarshalRejectsLooseFormats(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"March 2019"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`2019`), &d))
}

func TestParseDateLenient(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2019-03-15", "2019-03-15"},
		{"2019-03", "2019-03-01"},
		{"03/2019", "2019-03-01"},
		{"3/2019", "2019-03-01"},
		{"March 2019", "2019-03-01"},
		{"Mar 2019", "2019-03-01"},
		{"2019", "2019-01-01"},
		{"2019-03-15T10:00:00Z", "2019-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := ParseDateLenient(tt.input)
			require.NotNil(t, d)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestParseDateLenient_Null(t *testing.T) {
	for _, input := range []string{"", "  ", "Present", "current", "NOW", "sometime soon", "2019-13-45"} {
		assert.Nil(t, ParseDateLenient(input), "input %q", input)
	}
}

func TestParseLanguageProficiency(t *testing.T) {
	level, ok := ParseLanguageProficiency(" fluent ")
	assert.True(t, ok)
	assert.Equal(t, ProficiencyFluent, level)

	_, ok = ParseLanguageProficiency("Intermediate")
	assert.False(t, ok)
}
