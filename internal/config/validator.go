package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	validProviders    = []string{ProviderGemini, ProviderAnthropic, ProviderOpenAI}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validRenderStyles = []string{"auto", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night"}
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateProvider validates a provider name
func (v *Validator) ValidateProvider(provider string) error {
	if !slices.Contains(validProviders, provider) {
		return fmt.Errorf("invalid provider: %q (must be one of: %s)", provider, strings.Join(validProviders, ", "))
	}
	return nil
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateModel validates a model name
func (v *Validator) ValidateModel(model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}

// ValidateTemperature validates temperature value
func (v *Validator) ValidateTemperature(temp float64) error {
	if temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", temp)
	}
	return nil
}

// ValidateMaxTokens validates max tokens value
func (v *Validator) ValidateMaxTokens(tokens int) error {
	if tokens <= 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", tokens)
	}
	if tokens > 65536 {
		return fmt.Errorf("max output tokens too large (max 65536), got %d", tokens)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLogLevels, ", "))
	}
	return nil
}

// ValidateRenderStyle validates a glamour style name
func (v *Validator) ValidateRenderStyle(style string) error {
	if !slices.Contains(validRenderStyles, style) {
		return fmt.Errorf("invalid render style: %s (must be one of: %s)", style, strings.Join(validRenderStyles, ", "))
	}
	return nil
}

// ValidateHistoryCap validates the history cap. Odd caps would split a
// user/model pair.
func (v *Validator) ValidateHistoryCap(maxTurns int) error {
	if maxTurns < 0 {
		return fmt.Errorf("history.max_turns must be >= 0, got %d", maxTurns)
	}
	if maxTurns%2 != 0 {
		return fmt.Errorf("history.max_turns must be even, got %d", maxTurns)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateProvider(cfg.Provider); err != nil {
		errors = append(errors, err)
	} else if cfg.APIKey != "" {
		if err := v.ValidateAPIKey(cfg.APIKey, cfg.Provider); err != nil {
			errors = append(errors, err)
		}
	}

	if err := v.ValidateModel(cfg.Model); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateTemperature(cfg.Temperature); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateMaxTokens(cfg.MaxOutputTokens); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateHistoryCap(cfg.History.MaxTurns); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidateRenderStyle(cfg.Render.Style); err != nil {
		errors = append(errors, err)
	}
	if cfg.Render.WordWrap < 0 {
		errors = append(errors, fmt.Errorf("render.word_wrap must be >= 0"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging.max_size must be >= 0"))
	}
	if cfg.Logging.MaxAge < 0 {
		errors = append(errors, fmt.Errorf("logging.max_age must be >= 0"))
	}

	return errors
}
