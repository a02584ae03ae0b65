package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConfigDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	config := Config{}.withDefaults()
	assert.Equal(t, ProviderAnthropic, config.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", config.Model)
	assert.Equal(t, 8000, config.MaxTokens)
	assert.Equal(t, "sk-ant-test", config.APIKey)

	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	config = Config{Provider: ProviderGoogle}.withDefaults()
	assert.Equal(t, "gemini-2.5-pro", config.Model)
	assert.Equal(t, "gem-key", config.APIKey)
}

func TestGetConfigFromViper(t *testing.T) {
	defer viper.Reset()
	viper.Set("llm", map[string]any{
		"provider":   "openai",
		"model":      "gpt-4o",
		"max_tokens": 4000,
		"api_key":    "sk-test",
	})

	config, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, Config{Provider: "openai", Model: "gpt-4o", MaxTokens: 4000, APIKey: "sk-test"}, config)
}

func TestWithProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	config := Config{Provider: ProviderAnthropic, Model: DefaultModel, APIKey: "sk-ant"}
	assert.Equal(t, config, config.WithProvider(""))
	assert.Equal(t, config, config.WithProvider(ProviderAnthropic))

	switched := config.WithProvider(ProviderOpenAI)
	assert.Equal(t, ProviderOpenAI, switched.Provider)
	assert.Equal(t, "gpt-4.1", switched.Model)
	assert.Equal(t, "sk-openai", switched.APIKey)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{Provider: "mistral", APIKey: "x"})
	assert.EqualError(t, err, "unsupported provider: mistral")

	t.Setenv("OPENAI_API_KEY", "")
	_, err = NewProvider(ctx, Config{Provider: ProviderOpenAI})
	assert.Error(t, err)

	p, err := NewProvider(ctx, Config{Provider: ProviderAnthropic, APIKey: "x"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	_, err = NewProvider(ctx, Config{Provider: ProviderGoogle, APIKey: "x", Google: GoogleConfig{Backend: "azure"}})
	assert.EqualError(t, err, "unsupported google backend: azure")
}

func TestAnthropicGenerate(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "---\nname: docker-patterns\n---\n# Docker Patterns"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`)
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Config{APIKey: "sk-ant-test", BaseURL: server.URL, Model: DefaultModel, MaxTokens: 8000})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "Write a skill about Docker")
	require.NoError(t, err)
	assert.Contains(t, text, "# Docker Patterns")
	assert.Equal(t, "claude-sonnet-4-20250514", received["model"])
	assert.EqualValues(t, 8000, received["max_tokens"])
}

func TestAnthropicGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Config{APIKey: "x", BaseURL: server.URL, Model: DefaultModel, MaxTokens: 10})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4.1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "# Redis Patterns"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1", Model: "gpt-4.1", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	text, err := p.Generate(context.Background(), "Write a skill about Redis")
	require.NoError(t, err)
	assert.Equal(t, "# Redis Patterns", text)
}

func TestOpenAIGenerateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1", Model: "gpt-4.1", MaxTokens: 100})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestGoogleGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-pro:generateContent")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "# Kafka Patterns"}]}}]}`)
	}))
	defer server.Close()

	p, err := NewGoogleProvider(context.Background(), Config{APIKey: "gem-key", BaseURL: server.URL, Model: "gemini-2.5-pro", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	text, err := p.Generate(context.Background(), "Write a skill about Kafka")
	require.NoError(t, err)
	assert.Equal(t, "# Kafka Patterns", text)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", errors.Wrap(context.DeadlineExceeded, "generate"), false},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"openai 500", errors.Wrap(&openai.APIError{HTTPStatusCode: 500}, "openai request failed"), true},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"openai transport", &openai.RequestError{HTTPStatusCode: 0, Err: errors.New("connection reset")}, true},
		{"genai 503", genai.APIError{Code: 503}, true},
		{"genai 400", &genai.APIError{Code: 400}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}
