package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Reason classifies a failed turn
type Reason string

const (
	ReasonSafetyBlocked   Reason = "safety_blocked"
	ReasonQuotaExceeded   Reason = "quota_exceeded"
	ReasonInvalidRequest  Reason = "invalid_request"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonUnavailable     Reason = "unavailable"
	ReasonEmptyResponse   Reason = "empty_response"
	ReasonUnknown         Reason = "unknown"
)

// ProviderError is returned by providers for every remote failure
type ProviderError struct {
	Provider   string
	Reason     Reason
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Reason, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// messager matches errors from outside the provider boundary that carry a message
type messager interface {
	Message() string
}

// safetyMarkers identify blocked prompts in errors that are not ProviderErrors
var safetyMarkers = []string{
	"prompt_feedback",
	"promptFeedback",
	"blocked due to safety",
}

// reasonFromStatus maps an HTTP status code to a Reason
func reasonFromStatus(code int) Reason {
	switch {
	case code == http.StatusTooManyRequests:
		return ReasonQuotaExceeded
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ReasonUnauthenticated
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return ReasonInvalidRequest
	case code >= 500:
		return ReasonUnavailable
	default:
		return ReasonUnknown
	}
}

// Describe turns a failed call into the text shown to the user. label is the
// provider display name, e.g. "Gemini".
func Describe(label string, err error) (string, Reason) {
	if err == nil {
		return "", ""
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.Reason == ReasonSafetyBlocked || hasSafetyMarker(err.Error()) {
			return blockedMessage(label, perr.Message), ReasonSafetyBlocked
		}
		return apiMessage(label, perr.Message), perr.Reason
	}

	var m messager
	if errors.As(err, &m) {
		if hasSafetyMarker(err.Error()) {
			return blockedMessage(label, m.Message()), ReasonSafetyBlocked
		}
		return apiMessage(label, m.Message()), ReasonUnknown
	}

	return fmt.Sprintf("An unexpected error occurred: %s: %s", typeName(err), err.Error()), ReasonUnknown
}

// IsCanceled reports whether err comes from a canceled context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func apiMessage(label, message string) string {
	return fmt.Sprintf("%s API Error: %s", label, message)
}

func blockedMessage(label, message string) string {
	return fmt.Sprintf("%s API Error: %s. Prompt blocked due to safety settings.", label, message)
}

func hasSafetyMarker(s string) bool {
	for _, marker := range safetyMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func typeName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
