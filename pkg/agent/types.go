package agent

import (
	"github.com/harun/termai/pkg/session"
)

// Message roles understood by every provider
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// AgentConfig configures generation for every turn
type AgentConfig struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AuthProfile represents authentication credentials for LLM providers
type AuthProfile struct {
	ID       string `json:"id"`
	Provider string `json:"provider"` // "gemini", "anthropic", "openai"
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url,omitempty"`
}

// AgentMessage represents a message in the conversation
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Outcome is the displayable result of one turn. Exactly one of Text and
// ErrorMessage is set unless the turn was canceled.
type Outcome struct {
	Text         string `json:"text,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Reason       Reason `json:"reason,omitempty"`
	Canceled     bool   `json:"canceled,omitempty"`
}

// OK reports whether the turn produced a model reply
func (o Outcome) OK() bool {
	return !o.Canceled && o.ErrorMessage == ""
}

// DefaultConfig returns default agent configuration
func DefaultConfig() AgentConfig {
	return AgentConfig{
		Model:     "gemini-2.0-pro-exp",
		MaxTokens: 2048,
	}
}

// buildMessages converts session history plus the new utterance into provider messages
func buildMessages(history []session.Turn, utterance string) []AgentMessage {
	messages := make([]AgentMessage, 0, len(history)+1)
	for _, turn := range history {
		role := RoleUser
		if turn.Role == session.RoleModel {
			role = RoleModel
		}
		messages = append(messages, AgentMessage{Role: role, Content: turn.Text})
	}
	return append(messages, AgentMessage{Role: RoleUser, Content: utterance})
}

// EstimateTokens provides a rough token count estimation
func EstimateTokens(messages []AgentMessage) int {
	totalChars := 0
	for _, msg := range messages {
		totalChars += len(msg.Content)
	}
	// Rough estimation: 1 token ≈ 4 characters
	return (totalChars + 3) / 4
}
