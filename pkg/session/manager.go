package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn
type Role string

const (
	// RoleUser marks a turn typed by the user
	RoleUser Role = "user"
	// RoleModel marks a turn generated by the remote model
	RoleModel Role = "model"
)

// Turn represents a single conversation turn
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// CallFunc performs the remote call for one exchange. It receives a snapshot of
// the history recorded before the new utterance.
type CallFunc func(history []Turn) (string, error)

// Session is the ordered conversation history for one process run
type Session struct {
	id       string
	turns    []Turn
	maxTurns int
	mu       sync.RWMutex
}

// Option configures a Session
type Option func(*Session)

// WithMaxTurns caps the number of retained turns. Zero keeps every turn.
func WithMaxTurns(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// Start returns an empty session
func Start(opts ...Option) *Session {
	s := &Session{
		id:    uuid.New().String(),
		turns: []Turn{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier used for log correlation
func (s *Session) ID() string {
	return s.id
}

// MaxTurns returns the configured cap, zero when unbounded
func (s *Session) MaxTurns() int {
	return s.maxTurns
}

// Turns returns a copy of the recorded history
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of recorded turns
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Exchange runs call against the current history and records the user and model
// turns only when call succeeds.
func (s *Session) Exchange(utterance string, call CallFunc) (string, error) {
	if call == nil {
		return "", fmt.Errorf("session %s: call function is required", s.id)
	}

	reply, err := call(s.Turns())
	if err != nil {
		return "", err
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns,
		Turn{Role: RoleUser, Text: utterance, At: now},
		Turn{Role: RoleModel, Text: reply, At: now},
	)
	s.turns = trimToCap(s.turns, s.maxTurns)

	return reply, nil
}
