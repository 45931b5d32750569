package config

import "time"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Template drafts a whole evaluation form from a prompt (quality over speed)
	Template string `json:"template" yaml:"template"`

	// Formula proposes a scoring formula over template variables (needs to be fast)
	Formula string `json:"formula" yaml:"formula"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-" yaml:"apiKey"` // Never serialize
	Models    GeminiModels `json:"models" yaml:"models"`
	TimeoutMS int          `json:"timeoutMs" yaml:"timeoutMs"`

	// SuggestionTTL is how long identical suggestion requests are served from cache
	SuggestionTTL time.Duration `json:"suggestionTtl" yaml:"suggestionTtl"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Models: GeminiModels{
			Template: "gemini-2.0-flash",
			Formula:  "gemini-2.0-flash",
		},
		TimeoutMS:     20000,
		SuggestionTTL: time.Hour,
	}
}

// IsEnabled returns true if the AI API is configured
func (c AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns the per-call deadline
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
