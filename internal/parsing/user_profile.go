// Package parsing turns extracted resume text into a structured UserProfile using LLM extraction.
package parsing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillsync/profile-builder/internal/llm"
	"github.com/skillsync/profile-builder/internal/prompts"
	"github.com/skillsync/profile-builder/internal/types"
	"github.com/skillsync/profile-builder/internal/validation"
)

// Extractor produces profiles from resume text with a single model call per request
type Extractor struct {
	client   llm.Client
	tier     llm.ModelTier
	opts     llm.GenerationOptions
	observer Observer
}

// NewExtractor creates an extractor using the standard model tier
func NewExtractor(client llm.Client, opts llm.GenerationOptions) *Extractor {
	return &Extractor{
		client:   client,
		tier:     llm.TierStandard,
		opts:     opts,
		observer: NopObserver{},
	}
}

// WithObserver returns a copy of the extractor that reports to observer
func (e *Extractor) WithObserver(observer Observer) *Extractor {
	clone := *e
	if observer == nil {
		observer = NopObserver{}
	}
	clone.observer = observer
	return &clone
}

// ParseUserProfile extracts a UserProfile from cleaned resume text.
// The model is called exactly once; failures are *ProfileGenerationError.
func (e *Extractor) ParseUserProfile(ctx context.Context, resumeText string) (*types.UserProfile, []types.Anomaly, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, nil, &validation.ValidationError{
			Reason:  validation.ReasonMissingInput,
			Message: "resume text is empty",
		}
	}

	prompt := buildProfilePrompt(resumeText)
	model := e.client.GetModel(e.tier)

	e.observer.OnStart(model, len(prompt))
	started := time.Now()

	output, err := e.client.GenerateJSON(ctx, prompt, e.tier, e.opts)
	elapsed := time.Since(started)
	if err != nil {
		genErr := transportFailure(ctx, err)
		e.observer.OnError(model, elapsed, genErr)
		return nil, nil, genErr
	}
	e.observer.OnEnd(model, elapsed, len(output))

	profile, anomalies, err := CoerceProfile(output)
	if err != nil {
		return nil, nil, err
	}

	if email, changed := reconcileEmail(profile.Email, resumeText); changed {
		msg := fmt.Sprintf("replaced with more professional address %q found in resume text", email)
		if profile.Email == nil {
			msg = fmt.Sprintf("filled with address %q found in resume text", email)
		}
		anomalies = append(anomalies, types.Anomaly{Field: "email", Message: msg})
		profile.Email = &email
	}

	return profile, anomalies, nil
}

// buildProfilePrompt renders the extraction prompt for resumeText
func buildProfilePrompt(resumeText string) string {
	template := prompts.MustGet("profile.json", "extract-user-profile")
	return prompts.Format(template, map[string]string{
		"Schema":     llm.UserProfileSchema().Describe(),
		"ResumeText": resumeText,
	})
}

// reconcileEmail picks the most professional address among the model's choice
// and the addresses present in the text. It reports whether that differs from current.
func reconcileEmail(current *string, resumeText string) (string, bool) {
	candidates := FindEmails(resumeText)
	if len(candidates) == 0 {
		return "", false
	}
	if current != nil {
		candidates = append([]string{*current}, candidates...)
	}
	best := PreferProfessionalEmail(candidates)
	if current != nil && strings.EqualFold(best, *current) {
		return "", false
	}
	if fieldValidator.Var(best, "email") != nil {
		return "", false
	}
	return best, true
}

func transportFailure(ctx context.Context, err error) *ProfileGenerationError {
	cause := err
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		cause = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &ProfileGenerationError{
		Kind:    FailureTransport,
		Message: "model call failed",
		Cause:   cause,
	}
}
