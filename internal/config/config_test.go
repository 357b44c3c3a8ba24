package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-pro-exp", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxOutputTokens)
	assert.Zero(t, cfg.Temperature)
	assert.Zero(t, cfg.History.MaxTurns)
	assert.Equal(t, "auto", cfg.Render.Style)
	assert.Equal(t, 100, cfg.Render.WordWrap)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Console)
	assert.True(t, cfg.Logging.Redaction)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.APIKey = "AIzaTestKey"

		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing gemini key", func(t *testing.T) {
		cfg := DefaultConfig()

		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
		assert.Contains(t, err.Error(),
			"Error: Google API key not found. Please set the GOOGLE_API_KEY environment variable.")
	})

	t.Run("missing anthropic key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderAnthropic

		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("missing key is reported before other problems", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model = ""
		cfg.Logging.Level = "loud"

		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("collects every validation problem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.APIKey = "AIzaTestKey"
		cfg.Model = ""
		cfg.Logging.Level = "loud"

		err := cfg.Validate()
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMissingAPIKey))
		assert.Contains(t, err.Error(), "model name cannot be empty")
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestMissingKeyMessage(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{ProviderGemini, "Error: Google API key not found. Please set the GOOGLE_API_KEY environment variable."},
		{ProviderAnthropic, "Error: Anthropic API key not found. Please set the ANTHROPIC_API_KEY environment variable."},
		{ProviderOpenAI, "Error: OpenAI API key not found. Please set the OPENAI_API_KEY environment variable."},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingKeyMessage(tt.provider))
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "AIzaSyA1234567890abcdef"

	out := cfg.String()

	assert.NotContains(t, out, cfg.APIKey)
	assert.Contains(t, out, "AIza...cdef")
	assert.Contains(t, out, `"model": "gemini-2.0-pro-exp"`)
}
