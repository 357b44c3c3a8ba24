package config

import (
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
)

// Asker is the question surface the wizard needs.
type Asker interface {
	Select(label string, items []string) (string, error)
	Ask(label, defaultValue string, secret bool, validate func(string) error) (string, error)
}

// Wizard provides an interactive configuration wizard
type Wizard struct {
	asker Asker
	out   io.Writer
}

// NewWizard creates a new configuration wizard
func NewWizard(asker Asker, out io.Writer) *Wizard {
	return &Wizard{asker: asker, out: out}
}

// Run asks for the backend, credential and generation settings, starting from
// base. The returned config is a copy.
func (w *Wizard) Run(base *Config) (*Config, error) {
	fmt.Fprintln(w.out, "=== termai configuration ===")
	fmt.Fprintln(w.out)

	cfg := *base
	validator := NewValidator()

	provider, err := w.asker.Select("Provider", validProviders)
	if err != nil {
		return nil, err
	}
	if provider != cfg.Provider {
		cfg.APIKey = ""
		cfg.keyFromEnv = false
		cfg.Model = defaultModel(provider)
	}
	cfg.Provider = provider

	key, err := w.asker.Ask(
		fmt.Sprintf("API key (leave empty to use %s)", CredentialEnv(provider)),
		"", true,
		func(s string) error {
			if s == "" {
				return nil
			}
			return validator.ValidateAPIKey(s, provider)
		},
	)
	if err != nil {
		return nil, err
	}
	if key != "" {
		cfg.APIKey = key
		cfg.keyFromEnv = false
	}

	model, err := w.asker.Ask("Model", cfg.Model, false, validator.ValidateModel)
	if err != nil {
		return nil, err
	}
	cfg.Model = model

	tokens, err := w.asker.Ask("Max output tokens", strconv.Itoa(cfg.MaxOutputTokens), false, func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %s", s)
		}
		return validator.ValidateMaxTokens(n)
	})
	if err != nil {
		return nil, err
	}
	cfg.MaxOutputTokens, _ = strconv.Atoi(tokens)

	style, err := w.asker.Select("Render style", validRenderStyles)
	if err != nil {
		return nil, err
	}
	cfg.Render.Style = style

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete.")
	return &cfg, nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderOpenAI:
		return "gpt-4o"
	default:
		return DefaultConfig().Model
	}
}

// PromptAsker implements Asker with promptui.
type PromptAsker struct{}

// Select shows a list and returns the chosen item.
func (PromptAsker) Select(label string, items []string) (string, error) {
	sel := promptui.Select{Label: label, Items: items}
	_, choice, err := sel.Run()
	return choice, err
}

// Ask reads one validated line. Secret input is masked.
func (PromptAsker) Ask(label, defaultValue string, secret bool, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}
	if secret {
		p.Mask = '*'
	}
	return p.Run()
}
