package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/profile-builder/internal/llm"
	"github.com/skillsync/profile-builder/internal/llm/llmtest"
	"github.com/skillsync/profile-builder/internal/validation"
)

const sampleResume = `John Doe
Senior Engineer
john.doe@corp.com | john123@freemail.example

Experience: Senior Engineer at Acme Corp, 2019-Present
Skills: Go, Kubernetes`

// recordingObserver captures observer notifications
type recordingObserver struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingObserver) OnStart(string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "start")
}

func (r *recordingObserver) OnEnd(string, time.Duration, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "end")
}

func (r *recordingObserver) OnError(_ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "error")
	r.err = err
}

func TestParseUserProfile_Success(t *testing.T) {
	var gotOpts llm.GenerationOptions
	var gotTier llm.ModelTier
	client := &llmtest.MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier, opts llm.GenerationOptions) (string, error) {
			gotTier, gotOpts = tier, opts
			return `{"full_name": "John Doe", "email": "john.doe@corp.com",
				"experience": [{"title": "Senior Engineer", "company": "Acme Corp", "start_date": "2019-01-01", "end_date": null}]}`, nil
		},
	}
	observer := &recordingObserver{}
	extractor := NewExtractor(client, llm.DefaultGenerationOptions()).WithObserver(observer)

	profile, anomalies, err := extractor.ParseUserProfile(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, "John Doe", profile.FullName)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "john.doe@corp.com", *profile.Email)
	require.Len(t, profile.Experience, 1)
	assert.Nil(t, profile.Experience[0].EndDate)
	assert.Empty(t, anomalies)

	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, llm.TierStandard, gotTier)
	assert.Zero(t, gotOpts.Temperature)
	assert.Equal(t, int32(llm.DefaultMaxOutputTokens), gotOpts.MaxOutputTokens)
	assert.Equal(t, []string{"start", "end"}, observer.events)
}

func TestParseUserProfile_PromptEmbedsTextSchemaAndPolicy(t *testing.T) {
	client := llmtest.Returning(`{"full_name": "John Doe"}`)

	_, _, err := NewExtractor(client, llm.DefaultGenerationOptions()).ParseUserProfile(context.Background(), sampleResume)
	require.NoError(t, err)

	prompt := client.LastPrompt()
	assert.Contains(t, prompt, "Experience: Senior Engineer at Acme Corp, 2019-Present")
	assert.Contains(t, prompt, `"social_links"`)
	assert.Contains(t, prompt, `"Basic" | "Fluent" | "Native"`)
	assert.Contains(t, prompt, "most professional")
	assert.Contains(t, prompt, "separate entries")
	assert.NotContains(t, prompt, "{{.")
}

func TestParseUserProfile_PrefersProfessionalEmail(t *testing.T) {
	tests := []struct {
		name          string
		modelEmail    string
		wantAnomalies int
	}{
		{"model picks professional address", `"john.doe@corp.com"`, 0},
		{"model picks personal address", `"john123@freemail.example"`, 1},
		{"model returns no address", `null`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llmtest.Returning(`{"full_name": "John Doe", "email": ` + tt.modelEmail + `}`)

			profile, anomalies, err := NewExtractor(client, llm.DefaultGenerationOptions()).
				ParseUserProfile(context.Background(), sampleResume)
			require.NoError(t, err)

			require.NotNil(t, profile.Email)
			assert.Equal(t, "john.doe@corp.com", *profile.Email)
			assert.Len(t, anomalies, tt.wantAnomalies)
		})
	}
}

func TestParseUserProfile_TransportFailure(t *testing.T) {
	sentinel := errors.New("503 service unavailable")
	client := llmtest.Failing(sentinel)
	observer := &recordingObserver{}

	profile, _, err := NewExtractor(client, llm.DefaultGenerationOptions()).
		WithObserver(observer).
		ParseUserProfile(context.Background(), sampleResume)

	assert.Nil(t, profile)
	var genErr *ProfileGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, genErr.IsTransport())
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, []string{"start", "error"}, observer.events)
	assert.Same(t, genErr, observer.err)
}

func TestParseUserProfile_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &llmtest.MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier, llm.GenerationOptions) (string, error) {
			cancel()
			return "", errors.New("rpc aborted")
		},
	}

	_, _, err := NewExtractor(client, llm.DefaultGenerationOptions()).ParseUserProfile(ctx, sampleResume)

	var genErr *ProfileGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, genErr.IsTransport())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseUserProfile_InvalidOutputIsNotRetried(t *testing.T) {
	client := llmtest.Returning("Sorry, I can't help with that.")

	_, _, err := NewExtractor(client, llm.DefaultGenerationOptions()).ParseUserProfile(context.Background(), sampleResume)

	requireInvalidOutput(t, err)
	assert.Equal(t, 1, client.Calls())
}

func TestParseUserProfile_EmptyText(t *testing.T) {
	client := llmtest.Returning(`{"full_name": "John Doe"}`)

	_, _, err := NewExtractor(client, llm.DefaultGenerationOptions()).ParseUserProfile(context.Background(), "  \n ")

	var validationErr *validation.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, validation.ReasonMissingInput, validationErr.Reason)
	assert.Zero(t, client.Calls())
}

func TestParseUserProfile_Idempotent(t *testing.T) {
	output := `{"full_name": "John Doe", "headline": "Senior Engineer",
		"skills": [{"name": "Go", "proficiency_level": 5}, {"name": "Kubernetes"}],
		"experience": [{"title": "Senior Engineer", "company": "Acme Corp", "start_date": "2019-01", "end_date": "Present"}]}`
	extractor := NewExtractor(llmtest.Returning(output), llm.DefaultGenerationOptions())

	var encoded [][]byte
	for i := 0; i < 2; i++ {
		profile, _, err := extractor.ParseUserProfile(context.Background(), sampleResume)
		require.NoError(t, err)
		data, err := json.Marshal(profile)
		require.NoError(t, err)
		encoded = append(encoded, data)
	}

	assert.Equal(t, encoded[0], encoded[1])
}
