package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedBodies collects decoded request bodies seen by a test server
type capturedBodies struct {
	mu     sync.Mutex
	bodies []map[string]interface{}
}

func (c *capturedBodies) all() []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]interface{}{}, c.bodies...)
}

// newJSONServer serves body with status for every request and captures request bodies
func newJSONServer(t *testing.T, status int, body string) (*httptest.Server, *capturedBodies) {
	t.Helper()
	captured := &capturedBodies{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			var payload map[string]interface{}
			if err := json.Unmarshal(data, &payload); err == nil {
				captured.mu.Lock()
				captured.bodies = append(captured.bodies, payload)
				captured.mu.Unlock()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

func conversation() LLMRequest {
	return LLMRequest{
		Model: "test-model",
		Messages: []AgentMessage{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleModel, Content: "Hi there!"},
			{Role: RoleUser, Content: "how are you?"},
		},
		MaxTokens: 2048,
	}
}

func TestProviderFactory(t *testing.T) {
	factory := &ProviderFactory{}
	ctx := context.Background()

	tests := []struct {
		name  string
		label string
	}{
		{ProviderGemini, "Gemini"},
		{ProviderAnthropic, "Anthropic"},
		{ProviderOpenAI, "OpenAI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.NewProvider(ctx, AuthProfile{Provider: tt.name, APIKey: "test-key"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, provider.Provider())
			assert.Equal(t, tt.label, provider.Label())
		})
	}

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := factory.NewProvider(ctx, AuthProfile{Provider: "mistral", APIKey: "key"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider")
	})
}

func TestGeminiProvider_Call(t *testing.T) {
	ctx := context.Background()

	t.Run("returns text and sends history with roles", func(t *testing.T) {
		srv, captured := newJSONServer(t, http.StatusOK, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Doing well."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 3}
		}`)

		provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
		require.NoError(t, err)

		resp, err := provider.Call(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, "Doing well.", resp.Content)
		assert.Equal(t, "STOP", resp.FinishReason)
		assert.Equal(t, 12, resp.Usage.InputTokens)
		assert.Equal(t, 3, resp.Usage.OutputTokens)

		bodies := captured.all()
		require.Len(t, bodies, 1)
		contents, ok := bodies[0]["contents"].([]interface{})
		require.True(t, ok)
		require.Len(t, contents, 3)
		roles := []string{}
		for _, c := range contents {
			roles = append(roles, c.(map[string]interface{})["role"].(string))
		}
		assert.Equal(t, []string{"user", "model", "user"}, roles)
	})

	t.Run("prompt feedback block is a safety error", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusOK, `{"promptFeedback": {"blockReason": "SAFETY"}}`)

		provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
		require.NoError(t, err)

		_, err = provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonSafetyBlocked, perr.Reason)
		assert.Contains(t, perr.Message, "SAFETY")

		text, _ := Describe(provider.Label(), err)
		assert.Contains(t, text, "Prompt blocked due to safety settings.")
	})

	t.Run("safety finish reason is a safety error", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusOK, `{"candidates": [{"finishReason": "SAFETY"}]}`)

		provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
		require.NoError(t, err)

		_, err = provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonSafetyBlocked, perr.Reason)
	})

	t.Run("api error carries message and status", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusBadRequest, `{"error": {"code": 400, "message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT"}}`)

		provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
		require.NoError(t, err)

		_, err = provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonInvalidRequest, perr.Reason)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)

		text, _ := Describe(provider.Label(), err)
		assert.Equal(t, "Gemini API Error: API key not valid. Please pass a valid API key.", text)
	})

	t.Run("empty candidate text", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusOK, `{"candidates": [{"content": {"role": "model", "parts": []}, "finishReason": "STOP"}]}`)

		provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
		require.NoError(t, err)

		_, err = provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonEmptyResponse, perr.Reason)

		text, _ := Describe(provider.Label(), err)
		assert.Equal(t, "Gemini API Error: response contained no text", text)
	})
}

func TestGeminiProvider_ListModels(t *testing.T) {
	ctx := context.Background()
	srv, _ := newJSONServer(t, http.StatusOK, `{
		"models": [
			{"name": "models/gemini-2.0-pro-exp", "displayName": "Gemini 2.0 Pro", "supportedGenerationMethods": ["generateContent", "countTokens"]},
			{"name": "models/text-embedding-004", "displayName": "Text Embedding", "supportedGenerationMethods": ["embedContent"]}
		]
	}`)

	provider, err := NewGeminiProvider(ctx, "test-key", srv.URL)
	require.NoError(t, err)

	models, err := provider.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "models/gemini-2.0-pro-exp", models[0].Name)
	assert.Equal(t, "Gemini 2.0 Pro", models[0].DisplayName)
	assert.Contains(t, models[0].SupportedMethods, "generateContent")
}

func TestAnthropicProvider_Call(t *testing.T) {
	ctx := context.Background()

	t.Run("returns text and maps model role to assistant", func(t *testing.T) {
		srv, captured := newJSONServer(t, http.StatusOK, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
			"content": [{"type": "text", "text": "Doing well."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`)

		provider := NewAnthropicProvider("test-key", srv.URL)
		resp, err := provider.Call(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, "Doing well.", resp.Content)
		assert.Equal(t, "end_turn", resp.FinishReason)
		assert.Equal(t, 10, resp.Usage.InputTokens)

		bodies := captured.all()
		require.Len(t, bodies, 1)
		messages := bodies[0]["messages"].([]interface{})
		require.Len(t, messages, 3)
		assert.Equal(t, "assistant", messages[1].(map[string]interface{})["role"])
	})

	t.Run("refusal is a safety error", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusOK, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
			"content": [], "stop_reason": "refusal",
			"usage": {"input_tokens": 10, "output_tokens": 0}
		}`)

		provider := NewAnthropicProvider("test-key", srv.URL)
		_, err := provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonSafetyBlocked, perr.Reason)
	})

	t.Run("api error message is extracted", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusBadRequest, `{"type": "error", "error": {"type": "invalid_request_error", "message": "max_tokens: field required"}}`)

		provider := NewAnthropicProvider("test-key", srv.URL)
		_, err := provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonInvalidRequest, perr.Reason)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
		assert.Equal(t, "max_tokens: field required", perr.Message)
	})
}

func TestOpenAIProvider_Call(t *testing.T) {
	ctx := context.Background()

	t.Run("returns text", func(t *testing.T) {
		srv, captured := newJSONServer(t, http.StatusOK, `{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Doing well."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
		}`)

		provider := NewOpenAIProvider("test-key", srv.URL)
		resp, err := provider.Call(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, "Doing well.", resp.Content)
		assert.Equal(t, 9, resp.Usage.InputTokens)

		bodies := captured.all()
		require.Len(t, bodies, 1)
		messages := bodies[0]["messages"].([]interface{})
		require.Len(t, messages, 3)
		assert.Equal(t, "assistant", messages[1].(map[string]interface{})["role"])
	})

	t.Run("content filter is a safety error", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusOK, `{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "content_filter"}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 0, "total_tokens": 9}
		}`)

		provider := NewOpenAIProvider("test-key", srv.URL)
		_, err := provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonSafetyBlocked, perr.Reason)
	})

	t.Run("api error carries message", func(t *testing.T) {
		srv, _ := newJSONServer(t, http.StatusUnauthorized, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "param": null, "code": "invalid_api_key"}}`)

		provider := NewOpenAIProvider("test-key", srv.URL)
		_, err := provider.Call(ctx, conversation())
		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ReasonUnauthenticated, perr.Reason)

		text, _ := Describe(provider.Label(), err)
		assert.Equal(t, "OpenAI API Error: Incorrect API key provided", text)
	})
}
