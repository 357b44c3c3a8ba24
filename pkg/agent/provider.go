package agent

import (
	"context"
	"fmt"
)

// LLMProvider is an interface for LLM API providers
type LLMProvider interface {
	// Call makes an LLM API call
	Call(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name
	Provider() string

	// Label returns the human-readable provider name used in messages
	Label() string
}

// ModelLister is implemented by providers that can enumerate their models
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ModelInfo describes a model that supports content generation
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	SupportedMethods []string `json:"supported_methods"`
}

// LLMRequest contains the request parameters for LLM call
type LLMRequest struct {
	Model        string
	Messages     []AgentMessage
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLMResponse contains the response from LLM
type LLMResponse struct {
	Content      string
	FinishReason string
	Usage        *TokenUsage
}

// Provider names
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ProviderLabel returns the display label for a provider name
func ProviderLabel(name string) string {
	switch name {
	case ProviderGemini:
		return "Gemini"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return name
	}
}

// ProviderFactory creates LLM providers
type ProviderFactory struct{}

// NewProvider creates a new LLM provider based on auth profile
func (f *ProviderFactory) NewProvider(ctx context.Context, profile AuthProfile) (LLMProvider, error) {
	switch profile.Provider {
	case ProviderGemini:
		return NewGeminiProvider(ctx, profile.APIKey, profile.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicProvider(profile.APIKey, profile.BaseURL), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(profile.APIKey, profile.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}
