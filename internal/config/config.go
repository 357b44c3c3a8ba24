package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by Validate when no credential is available for
// the configured provider.
var ErrMissingAPIKey = errors.New("API key not found")

// Provider names accepted in the provider field.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config represents the termai configuration
type Config struct {
	// Backend selection
	Provider string `json:"provider" mapstructure:"provider"`
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	BaseURL  string `json:"base_url" mapstructure:"base_url"`

	// Generation parameters
	Model           string  `json:"model" mapstructure:"model"`
	MaxOutputTokens int     `json:"max_output_tokens" mapstructure:"max_output_tokens"`
	Temperature     float64 `json:"temperature" mapstructure:"temperature"` // 0 uses the model default
	SystemPrompt    string  `json:"system_prompt" mapstructure:"system_prompt"`

	History HistoryConfig `json:"history" mapstructure:"history"`
	Render  RenderConfig  `json:"render" mapstructure:"render"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Set by Loader.Load. Values from the environment or derived from HOME
	// are not written back by Save.
	keyFromEnv     bool
	derivedDataDir bool
	derivedLogFile bool
}

// HistoryConfig bounds the conversation history.
type HistoryConfig struct {
	// MaxTurns caps the stored turns; 0 keeps everything.
	MaxTurns int `json:"max_turns" mapstructure:"max_turns"`
}

// RenderConfig controls markdown output.
type RenderConfig struct {
	Style    string `json:"style" mapstructure:"style"` // auto, dark, light, notty, ascii, dracula, pink, tokyo-night
	WordWrap int    `json:"word_wrap" mapstructure:"word_wrap"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"` // debug, info, warn, error
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB, 0 disables rotation
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		Model:           "gemini-2.0-pro-exp",
		MaxOutputTokens: 2048,
		History: HistoryConfig{
			MaxTurns: 0,
		},
		Render: RenderConfig{
			Style:    "auto",
			WordWrap: 100,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   false,
			MaxSize:   10,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
	}
}

// CredentialEnv returns the environment variable that carries the API key for
// a provider.
func CredentialEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

// MissingKeyMessage is the text shown when a provider has no credential.
func MissingKeyMessage(provider string) string {
	vendor := "Google"
	switch provider {
	case ProviderAnthropic:
		vendor = "Anthropic"
	case ProviderOpenAI:
		vendor = "OpenAI"
	}
	return fmt.Sprintf("Error: %s API key not found. Please set the %s environment variable.",
		vendor, CredentialEnv(provider))
}

// KeyFromEnv reports whether APIKey was taken from the environment rather
// than the config file.
func (c *Config) KeyFromEnv() bool {
	return c.keyFromEnv
}

// Validate validates the configuration. A missing credential is reported
// first and wraps ErrMissingAPIKey.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingAPIKey, MissingKeyMessage(c.Provider))
	}

	if errs := NewValidator().ValidateConfig(c); len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// String returns a JSON representation with the API key masked.
func (c *Config) String() string {
	masked := *c
	if masked.APIKey != "" {
		masked.APIKey = maskKey(masked.APIKey)
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
