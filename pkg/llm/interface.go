// Package llm provides the single-prompt LLM providers used to generate
// skill documents.
package llm

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Provider turns a prompt into generated text
type Provider interface {
	// Name returns the provider name used in logs and metrics
	Name() string
	// Generate sends prompt as a single user message and returns the text reply
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider creates the provider named in config
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	config = config.withDefaults()
	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(config)
	case ProviderOpenAI:
		return NewOpenAIProvider(config)
	case ProviderGoogle:
		return NewGoogleProvider(ctx, config)
	default:
		return nil, errors.Errorf("unsupported provider: %s", config.Provider)
	}
}

// IsRetryable reports whether a provider error is worth another attempt:
// rate limiting, server errors and transport failures are; cancellation,
// bad requests and auth failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if status, ok := statusCode(err); ok {
		return status == http.StatusTooManyRequests || status >= 500
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var requestErr *openai.RequestError
	return stderrors.As(err, &requestErr)
}

func statusCode(err error) (int, bool) {
	var anthropicErr *anthropic.Error
	if stderrors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}

	var openaiErr *openai.APIError
	if stderrors.As(err, &openaiErr) {
		return openaiErr.HTTPStatusCode, true
	}
	var requestErr *openai.RequestError
	if stderrors.As(err, &requestErr) && requestErr.HTTPStatusCode != 0 {
		return requestErr.HTTPStatusCode, true
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	var genaiPtr *genai.APIError
	if stderrors.As(err, &genaiPtr) {
		return genaiPtr.Code, true
	}

	return 0, false
}
