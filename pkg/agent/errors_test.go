package agent

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// apiFailure is an error from outside the provider boundary that exposes a message
type apiFailure struct {
	msg  string
	body string
}

func (e *apiFailure) Error() string   { return e.msg + " " + e.body }
func (e *apiFailure) Message() string { return e.msg }

func TestDescribe(t *testing.T) {
	t.Run("safety blocked provider error", func(t *testing.T) {
		err := &ProviderError{Provider: "gemini", Reason: ReasonSafetyBlocked, Message: "prompt blocked: SAFETY"}

		text, reason := Describe("Gemini", err)

		assert.Equal(t, "Gemini API Error: prompt blocked: SAFETY. Prompt blocked due to safety settings.", text)
		assert.Contains(t, text, "blocked due to safety settings")
		assert.Equal(t, ReasonSafetyBlocked, reason)
	})

	t.Run("provider error with message", func(t *testing.T) {
		err := &ProviderError{Provider: "gemini", Reason: ReasonQuotaExceeded, StatusCode: 429, Message: "Resource has been exhausted"}

		text, reason := Describe("Gemini", err)

		assert.Equal(t, "Gemini API Error: Resource has been exhausted", text)
		assert.Equal(t, ReasonQuotaExceeded, reason)
	})

	t.Run("wrapped provider error", func(t *testing.T) {
		err := fmt.Errorf("turn failed: %w", &ProviderError{Provider: "gemini", Reason: ReasonInvalidRequest, Message: "bad model"})

		text, _ := Describe("Gemini", err)

		assert.Equal(t, "Gemini API Error: bad model", text)
	})

	t.Run("foreign error with message and prompt feedback marker", func(t *testing.T) {
		err := &apiFailure{msg: "stopped", body: "see response.prompt_feedback"}

		text, reason := Describe("Gemini", err)

		assert.Contains(t, text, "blocked due to safety settings")
		assert.Equal(t, "Gemini API Error: stopped. Prompt blocked due to safety settings.", text)
		assert.Equal(t, ReasonSafetyBlocked, reason)
	})

	t.Run("foreign error with message", func(t *testing.T) {
		err := &apiFailure{msg: "quota exceeded", body: "{}"}

		text, reason := Describe("Gemini", err)

		assert.Equal(t, "Gemini API Error: quota exceeded", text)
		assert.Equal(t, ReasonUnknown, reason)
	})

	t.Run("error without message", func(t *testing.T) {
		err := errors.New("connection reset")

		text, reason := Describe("Gemini", err)

		assert.Equal(t, "An unexpected error occurred: errors.errorString: connection reset", text)
		assert.Contains(t, text, "errors.errorString")
		assert.Contains(t, text, "connection reset")
		assert.Equal(t, ReasonUnknown, reason)
	})

	t.Run("label follows provider", func(t *testing.T) {
		err := &ProviderError{Provider: "openai", Reason: ReasonUnauthenticated, Message: "Incorrect API key"}

		text, _ := Describe("OpenAI", err)

		assert.Equal(t, "OpenAI API Error: Incorrect API key", text)
	})

	t.Run("nil error", func(t *testing.T) {
		text, reason := Describe("Gemini", nil)
		assert.Empty(t, text)
		assert.Empty(t, reason)
	})
}

func TestReasonFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want Reason
	}{
		{http.StatusTooManyRequests, ReasonQuotaExceeded},
		{http.StatusUnauthorized, ReasonUnauthenticated},
		{http.StatusForbidden, ReasonUnauthenticated},
		{http.StatusBadRequest, ReasonInvalidRequest},
		{http.StatusNotFound, ReasonInvalidRequest},
		{http.StatusInternalServerError, ReasonUnavailable},
		{http.StatusServiceUnavailable, ReasonUnavailable},
		{http.StatusTeapot, ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, reasonFromStatus(tt.code))
		})
	}
}

func TestProviderError(t *testing.T) {
	inner := errors.New("inner")
	err := &ProviderError{Provider: "gemini", Reason: ReasonUnavailable, Message: "backend down", Err: inner}

	assert.Equal(t, "gemini unavailable: backend down", err.Error())
	assert.ErrorIs(t, err, inner)
}
