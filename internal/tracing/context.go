package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// RunIDKey identifies one process run
	RunIDKey ContextKey = "run_id"
	// SessionIDKey identifies the conversation
	SessionIDKey ContextKey = "session_id"
	// TurnIDKey identifies one remote call
	TurnIDKey ContextKey = "turn_id"
)

// TraceContext holds the correlation IDs carried by a context
type TraceContext struct {
	RunID     string
	SessionID string
	TurnID    string
}

// NewID generates a new correlation ID
func NewID() string {
	return uuid.New().String()
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithSessionID adds a session ID to the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithTurnID adds a turn ID to the context
func WithTurnID(ctx context.Context, turnID string) context.Context {
	return context.WithValue(ctx, TurnIDKey, turnID)
}

// GetRunID retrieves the run ID from the context
func GetRunID(ctx context.Context) string {
	return stringValue(ctx, RunIDKey)
}

// GetSessionID retrieves the session ID from the context
func GetSessionID(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

// GetTurnID retrieves the turn ID from the context
func GetTurnID(ctx context.Context) string {
	return stringValue(ctx, TurnIDKey)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		RunID:     GetRunID(ctx),
		SessionID: GetSessionID(ctx),
		TurnID:    GetTurnID(ctx),
	}
}

// NewRunContext tags ctx with a fresh run ID unless it already has one.
func NewRunContext(ctx context.Context) context.Context {
	if GetRunID(ctx) != "" {
		return ctx
	}
	return WithRunID(ctx, NewID())
}

// NewTurnContext tags ctx with the session ID and a fresh turn ID.
func NewTurnContext(ctx context.Context, sessionID string) context.Context {
	if sessionID != "" {
		ctx = WithSessionID(ctx, sessionID)
	}
	return WithTurnID(ctx, NewID())
}

// Logger returns base with every correlation ID found in ctx attached.
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)
	lc := base.With()
	if tc.RunID != "" {
		lc = lc.Str(string(RunIDKey), tc.RunID)
	}
	if tc.SessionID != "" {
		lc = lc.Str(string(SessionIDKey), tc.SessionID)
	}
	if tc.TurnID != "" {
		lc = lc.Str(string(TurnIDKey), tc.TurnID)
	}
	return lc.Logger()
}
