package llm

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// GoogleProvider generates text with Gemini, either through the Gemini API
// or Vertex AI
type GoogleProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGoogleProvider creates a new Google GenAI provider
func NewGoogleProvider(ctx context.Context, config Config) (*GoogleProvider, error) {
	clientConfig := &genai.ClientConfig{}

	switch config.Google.Backend {
	case "vertexai":
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = config.Google.Project
		clientConfig.Location = config.Google.Location
	case "", "gemini":
		if config.APIKey == "" {
			return nil, errors.New("google API key is required (set GOOGLE_API_KEY or GEMINI_API_KEY)")
		}
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = config.APIKey
	default:
		return nil, errors.Errorf("unsupported google backend: %s", config.Google.Backend)
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Google GenAI client")
	}

	return &GoogleProvider{
		client:    client,
		model:     config.Model,
		maxTokens: config.MaxTokens,
	}, nil
}

// Name returns "google"
func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// Generate sends prompt to Gemini and returns the concatenated text parts
func (p *GoogleProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "google request failed")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("google response contained no text")
	}
	return text, nil
}
