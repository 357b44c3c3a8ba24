package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/harun/termai/internal/metrics"
	"github.com/harun/termai/internal/tracing"
	"github.com/harun/termai/pkg/session"
	"github.com/rs/zerolog"
)

// Executor runs one chat turn at a time against a provider
type Executor struct {
	provider LLMProvider
	agent    AgentConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Config holds executor configuration
type Config struct {
	Provider LLMProvider
	Agent    AgentConfig
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewExecutor creates a new turn executor
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if err := validateConfig(cfg.Agent); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Executor{
		provider: cfg.Provider,
		agent:    cfg.Agent,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Label returns the display name of the configured provider
func (e *Executor) Label() string {
	return e.provider.Label()
}

// Send forwards utterance to the provider with the session history as context.
// Failures are returned as display text in the Outcome.
func (e *Executor) Send(ctx context.Context, sess *session.Session, utterance string) Outcome {
	ctx = tracing.NewTurnContext(ctx, sess.ID())
	logger := tracing.Logger(ctx, e.logger).With().
		Str("provider", e.provider.Provider()).
		Logger()

	start := time.Now()
	var usage *TokenUsage

	reply, err := sess.Exchange(utterance, func(history []session.Turn) (string, error) {
		request := LLMRequest{
			Model:        e.agent.Model,
			Messages:     buildMessages(history, utterance),
			Temperature:  e.agent.Temperature,
			MaxTokens:    e.agent.MaxTokens,
			SystemPrompt: e.agent.SystemPrompt,
		}

		logger.Debug().
			Int("history", len(history)).
			Int("estimatedTokens", EstimateTokens(request.Messages)).
			Msg("Calling provider")

		response, err := e.provider.Call(ctx, request)
		if err != nil {
			return "", err
		}
		usage = response.Usage
		return response.Content, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		if IsCanceled(err) || ctx.Err() != nil {
			logger.Info().Dur("duration", elapsed).Msg("Turn canceled")
			return Outcome{Canceled: true}
		}

		text, reason := Describe(e.provider.Label(), err)
		e.record(reason, elapsed, sess)
		logger.Warn().
			Err(err).
			Str("reason", string(reason)).
			Dur("duration", elapsed).
			Msg("Turn failed")
		return Outcome{ErrorMessage: text, Reason: reason}
	}

	e.record("", elapsed, sess)
	event := logger.Debug().Dur("duration", elapsed).Int("turns", sess.Len())
	if usage != nil {
		event = event.Int("inputTokens", usage.InputTokens).Int("outputTokens", usage.OutputTokens)
	}
	event.Msg("Turn completed")

	return Outcome{Text: reply}
}

func (e *Executor) record(reason Reason, elapsed time.Duration, sess *session.Session) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordTurn(e.provider.Provider(), string(reason), elapsed)
	e.metrics.SetSessionTurns(sess.Len())
}

// validateConfig validates agent configuration
func validateConfig(config AgentConfig) error {
	if config.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	return nil
}
