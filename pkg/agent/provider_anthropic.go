package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"
)

const anthropicDefaultMaxTokens = 2048

// AnthropicProvider implements LLMProvider for Anthropic Claude
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider. baseURL is optional.
func NewAnthropicProvider(apiKey, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
	}
}

// Provider returns the provider name
func (p *AnthropicProvider) Provider() string {
	return ProviderAnthropic
}

// Label returns the display name
func (p *AnthropicProvider) Label() string {
	return ProviderLabel(ProviderAnthropic)
}

// Call makes an API call to Anthropic Claude
func (p *AnthropicProvider) Call(ctx context.Context, request LLMRequest) (*LLMResponse, error) {
	anthropicMessages := make([]anthropic.MessageParam, 0, len(request.Messages))

	for _, msg := range request.Messages {
		if msg.Role == RoleModel {
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
			continue
		}
		anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
			anthropic.NewTextBlock(msg.Content),
		))
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	reqParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		Messages:  anthropicMessages,
		MaxTokens: int64(maxTokens),
	}

	if request.SystemPrompt != "" {
		reqParams.System = []anthropic.TextBlockParam{
			{Text: request.SystemPrompt},
		}
	}

	if request.Temperature > 0 {
		reqParams.Temperature = anthropic.Float(request.Temperature)
	}

	response, err := p.client.Messages.New(ctx, reqParams)
	if err != nil {
		return nil, p.wrapError(err)
	}

	content := ""
	for _, block := range response.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}

	stopReason := string(response.StopReason)
	if stopReason == "refusal" {
		return nil, &ProviderError{
			Provider: ProviderAnthropic,
			Reason:   ReasonSafetyBlocked,
			Message:  "the model refused to answer",
		}
	}

	if content == "" {
		return nil, &ProviderError{
			Provider: ProviderAnthropic,
			Reason:   ReasonEmptyResponse,
			Message:  "response contained no text",
		}
	}

	return &LLMResponse{
		Content:      content,
		FinishReason: stopReason,
		Usage: &TokenUsage{
			InputTokens:  int(response.Usage.InputTokens),
			OutputTokens: int(response.Usage.OutputTokens),
		},
	}, nil
}

// wrapError converts SDK failures into a ProviderError
func (p *AnthropicProvider) wrapError(err error) error {
	if IsCanceled(err) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		message := gjson.Get(apiErr.RawJSON(), "error.message").String()
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", apiErr.StatusCode)
		}
		return &ProviderError{
			Provider:   ProviderAnthropic,
			Reason:     reasonFromStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    message,
			Err:        err,
		}
	}

	return err
}
