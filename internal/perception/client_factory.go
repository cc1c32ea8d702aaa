package perception

import (
	"context"
	"fmt"
	"os"

	"quorum/internal/config"
)

// NewClient builds the ModelClient for one member's model reference.
// API keys come from the environment: ref.apiKeyEnv when set, otherwise
// the provider's conventional variable.
func NewClient(ctx context.Context, ref config.ModelRef) (ModelClient, error) {
	switch ref.Provider {
	case "openai":
		return NewOpenAIClient(apiKey(ref, "OPENAI_API_KEY"), ref.Model, ref.BaseURL)
	case "gemini":
		key := apiKey(ref, "GEMINI_API_KEY")
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		return NewGeminiClient(ctx, key, ref.Model)
	case "mock":
		return NewScriptedClient(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", ref.Provider)
	}
}

func apiKey(ref config.ModelRef, fallbackEnv string) string {
	if ref.APIKeyEnv != "" {
		return os.Getenv(ref.APIKeyEnv)
	}
	return os.Getenv(fallbackEnv)
}

// CredentialsPresent reports whether the environment carries a key for the
// given model reference. Used by onboarding to fail early.
func CredentialsPresent(ref config.ModelRef) bool {
	switch ref.Provider {
	case "openai":
		return apiKey(ref, "OPENAI_API_KEY") != ""
	case "gemini":
		return apiKey(ref, "GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != ""
	case "mock":
		return true
	default:
		return false
	}
}
