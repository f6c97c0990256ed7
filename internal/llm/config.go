// Package llm provides the text-generation client abstraction used for profile extraction.
package llm

// ModelTier names a model slot in Config
type ModelTier string

// TierStandard is the slot used for profile extraction
const TierStandard ModelTier = "standard"


// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Default generation parameters for profile extraction
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultMaxOutputTokens = 2000
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// GenerationOptions bounds a single generation call.
// Temperature 0 makes output reproducible for identical prompts.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultGenerationOptions returns deterministic options with the default token budget
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{Temperature: 0, MaxOutputTokens: DefaultMaxOutputTokens}
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierStandard: DefaultModel,
		},
	}
}

// GetModel returns the model name for a tier, or "" when none is configured
func (c *Config) GetModel(tier ModelTier) string {
	return c.Models[tier]
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
