package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// finish reasons that mean the candidate was withheld by content filtering
var geminiSafetyFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety: true,
	"PROHIBITED_CONTENT":     true,
	"BLOCKLIST":              true,
	"SPII":                   true,
}

// GeminiProvider implements LLMProvider for Google Gemini
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider. baseURL is optional.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

// Provider returns the provider name
func (p *GeminiProvider) Provider() string {
	return ProviderGemini
}

// Label returns the display name
func (p *GeminiProvider) Label() string {
	return ProviderLabel(ProviderGemini)
}

// Call makes an API call to Google Gemini
func (p *GeminiProvider) Call(ctx context.Context, request LLMRequest) (*LLMResponse, error) {
	contents := make([]*genai.Content, 0, len(request.Messages))
	for _, msg := range request.Messages {
		var role genai.Role = genai.RoleUser
		if msg.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	config := &genai.GenerateContentConfig{}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(request.Temperature))
	}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}

	response, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	if err != nil {
		return nil, p.wrapError(err)
	}

	if fb := response.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != "BLOCKED_REASON_UNSPECIFIED" {
		msg := fb.BlockReasonMessage
		if msg == "" {
			msg = fmt.Sprintf("prompt blocked: %s", fb.BlockReason)
		}
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Reason:   ReasonSafetyBlocked,
			Message:  msg,
		}
	}

	finishReason := ""
	if len(response.Candidates) > 0 {
		fr := response.Candidates[0].FinishReason
		finishReason = string(fr)
		if geminiSafetyFinishReasons[fr] {
			return nil, &ProviderError{
				Provider: ProviderGemini,
				Reason:   ReasonSafetyBlocked,
				Message:  fmt.Sprintf("response withheld: %s", fr),
			}
		}
	}

	// An empty reply is reported as an API error so the user sees the
	// provider label rather than a generic failure.
	text := response.Text()
	if text == "" {
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Reason:   ReasonEmptyResponse,
			Message:  "response contained no text",
		}
	}

	usage := &TokenUsage{}
	if response.UsageMetadata != nil {
		usage.InputTokens = int(response.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(response.UsageMetadata.CandidatesTokenCount)
	}

	return &LLMResponse{
		Content:      text,
		FinishReason: finishReason,
		Usage:        usage,
	}, nil
}

// ListModels returns the models that support generateContent
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models := []ModelInfo{}

	for model, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, p.wrapError(err)
		}
		if !slices.Contains(model.SupportedActions, "generateContent") {
			continue
		}
		models = append(models, ModelInfo{
			Name:             model.Name,
			DisplayName:      model.DisplayName,
			SupportedMethods: model.SupportedActions,
		})
	}

	return models, nil
}

// wrapError converts SDK failures into a ProviderError
func (p *GeminiProvider) wrapError(err error) error {
	if IsCanceled(err) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   ProviderGemini,
			Reason:     geminiReason(apiErr),
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	return err
}

func geminiReason(apiErr genai.APIError) Reason {
	switch strings.ToUpper(apiErr.Status) {
	case "RESOURCE_EXHAUSTED":
		return ReasonQuotaExceeded
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return ReasonUnauthenticated
	case "INVALID_ARGUMENT", "NOT_FOUND", "FAILED_PRECONDITION":
		return ReasonInvalidRequest
	case "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED":
		return ReasonUnavailable
	}
	return reasonFromStatus(apiErr.Code)
}
