// Package repl runs the interactive read-eval-print loop: read a line, send
// it as one chat turn, render the result.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harun/termai/internal/metrics"
	"github.com/harun/termai/internal/render"
	"github.com/harun/termai/internal/tracing"
	"github.com/harun/termai/pkg/agent"
	"github.com/harun/termai/pkg/session"
	"github.com/rs/zerolog"
)

// maxReadErrors ends the loop after this many consecutive input failures.
const maxReadErrors = 3

// Sender performs one chat turn. *agent.Executor implements it.
type Sender interface {
	Send(ctx context.Context, sess *session.Session, utterance string) agent.Outcome
	Label() string
}

// Renderer is the output surface. *render.Renderer implements it.
type Renderer interface {
	Markdown(text string) error
	Error(msg string) error
	Banner(title, hint string) error
	Notice(msg string) error
}

var _ Renderer = (*render.Renderer)(nil)

// Config holds REPL dependencies
type Config struct {
	Reader   LineReader
	Sender   Sender
	Renderer Renderer
	Session  *session.Session
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// REPL is a single-threaded chat loop bound to one session.
type REPL struct {
	reader   LineReader
	sender   Sender
	renderer Renderer
	session  *session.Session
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New creates a REPL. A nil session starts a fresh one.
func New(cfg Config) (*REPL, error) {
	if cfg.Reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if cfg.Sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}

	sess := cfg.Session
	if sess == nil {
		sess = session.Start()
	}

	return &REPL{
		reader:   cfg.Reader,
		sender:   cfg.Sender,
		renderer: cfg.Renderer,
		session:  sess,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Session returns the conversation the loop appends to.
func (r *REPL) Session() *session.Session {
	return r.session
}

// Run blocks until the user exits. It returns nil for exit, quit, Ctrl-C at
// the prompt and end of input. It returns context.Canceled when ctx is
// canceled, which happens when an interrupt arrives during a remote call.
func (r *REPL) Run(ctx context.Context) error {
	title := fmt.Sprintf("Terminal AI Assistant (%s API, Chat Mode)", r.sender.Label())
	if err := r.renderer.Banner(title, "(Type 'exit' or 'quit' to end)"); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}

	r.logger = tracing.Logger(ctx, r.logger)
	r.logger.Info().Str("session_id", r.session.ID()).Msg("Chat started")
	defer r.summarize()

	readErrors := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := r.reader.ReadLine()
		switch {
		case errors.Is(err, ErrInterrupt), errors.Is(err, io.EOF):
			// the prompt line is left open on interrupt
			r.notice("")
			r.notice("Exiting...")
			return nil
		case err != nil:
			readErrors++
			r.report(err)
			if readErrors >= maxReadErrors {
				return fmt.Errorf("giving up after %d input errors: %w", readErrors, err)
			}
			continue
		}
		readErrors = 0

		if isExit(line) {
			return nil
		}

		if err := r.turn(ctx, line); err != nil {
			return err
		}
	}
}

// turn sends one utterance and renders the outcome. Only cancellation is
// returned; every other failure is reported and the loop goes on.
func (r *REPL) turn(ctx context.Context, line string) error {
	outcome := r.sender.Send(ctx, r.session, line)
	if outcome.Canceled {
		return context.Canceled
	}

	if !outcome.OK() {
		if err := r.renderer.Error(outcome.ErrorMessage); err != nil {
			r.report(err)
		}
		return nil
	}

	if err := r.renderer.Markdown(outcome.Text); err != nil {
		r.report(err)
	}
	return nil
}

// isExit matches exit and quit in any case. Surrounding whitespace is ignored,
// so " exit" ends the chat instead of being sent as a prompt.
func isExit(line string) bool {
	word := strings.TrimSpace(line)
	return strings.EqualFold(word, "exit") || strings.EqualFold(word, "quit")
}

// report renders a loop failure generically.
func (r *REPL) report(err error) {
	r.logger.Error().Err(err).Msg("Loop error")
	if rerr := r.renderer.Error("An error occurred: " + err.Error()); rerr != nil {
		r.logger.Error().Err(rerr).Msg("Failed to render error")
	}
}

func (r *REPL) notice(msg string) {
	if err := r.renderer.Notice(msg); err != nil {
		r.logger.Error().Err(err).Msg("Failed to render notice")
	}
}

func (r *REPL) summarize() {
	event := r.logger.Info().
		Str("session_id", r.session.ID()).
		Int("turns", r.session.Len())
	if r.metrics != nil {
		s := r.metrics.Summarize()
		event = event.Int("succeeded", s.Succeeded).Int("failed", s.Failed)
	}
	event.Msg("Chat ended")
}
