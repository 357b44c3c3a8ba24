package agent

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements LLMProvider for OpenAI
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider. baseURL is optional.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
	}
}

// Provider returns the provider name
func (p *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

// Label returns the display name
func (p *OpenAIProvider) Label() string {
	return ProviderLabel(ProviderOpenAI)
}

// Call makes an API call to OpenAI
func (p *OpenAIProvider) Call(ctx context.Context, request LLMRequest) (*LLMResponse, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}

	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}

	for _, msg := range request.Messages {
		switch msg.Role {
		case RoleModel:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: messages,
	}

	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.wrapError(err)
	}

	if len(response.Choices) == 0 {
		return nil, &ProviderError{
			Provider: ProviderOpenAI,
			Reason:   ReasonEmptyResponse,
			Message:  "no response choices returned",
		}
	}

	choice := response.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, &ProviderError{
			Provider: ProviderOpenAI,
			Reason:   ReasonSafetyBlocked,
			Message:  "response withheld by content filter",
		}
	}

	if choice.Message.Content == "" {
		return nil, &ProviderError{
			Provider: ProviderOpenAI,
			Reason:   ReasonEmptyResponse,
			Message:  "response contained no text",
		}
	}

	return &LLMResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: &TokenUsage{
			InputTokens:  int(response.Usage.PromptTokens),
			OutputTokens: int(response.Usage.CompletionTokens),
		},
	}, nil
}

// wrapError converts SDK failures into a ProviderError
func (p *OpenAIProvider) wrapError(err error) error {
	if IsCanceled(err) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		reason := reasonFromStatus(apiErr.StatusCode)
		if apiErr.Code == "content_filter" || apiErr.Code == "content_policy_violation" {
			reason = ReasonSafetyBlocked
		}
		message := apiErr.Message
		if message == "" {
			message = err.Error()
		}
		return &ProviderError{
			Provider:   ProviderOpenAI,
			Reason:     reason,
			StatusCode: apiErr.StatusCode,
			Message:    message,
			Err:        err,
		}
	}

	return err
}
