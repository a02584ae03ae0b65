package llm

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Provider names accepted in Config.Provider
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
)

// Defaults for the anthropic provider, which the generator uses unless told otherwise
const (
	DefaultProvider  = ProviderAnthropic
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 8000
)

var defaultModels = map[string]string{
	ProviderAnthropic: DefaultModel,
	ProviderOpenAI:    "gpt-4.1",
	ProviderGoogle:    "gemini-2.5-pro",
}

var apiKeyEnv = map[string][]string{
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderGoogle:    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
}

// Config selects and configures the LLM provider used for skill generation
type Config struct {
	Provider  string       `mapstructure:"provider"`
	Model     string       `mapstructure:"model"`
	MaxTokens int          `mapstructure:"max_tokens"`
	APIKey    string       `mapstructure:"api_key"`
	BaseURL   string       `mapstructure:"base_url"`
	Google    GoogleConfig `mapstructure:"google"`
}

// GoogleConfig holds the Vertex AI settings. Backend is "gemini" (default) or "vertexai".
type GoogleConfig struct {
	Backend  string `mapstructure:"backend"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

// DefaultConfig returns the anthropic defaults
func DefaultConfig() Config {
	return Config{
		Provider:  DefaultProvider,
		Model:     DefaultModel,
		MaxTokens: DefaultMaxTokens,
	}
}

// GetConfigFromViper decodes the "llm" section and fills in provider defaults
func GetConfigFromViper() (Config, error) {
	config := Config{}
	if raw := viper.GetStringMap("llm"); len(raw) > 0 {
		if err := mapstructure.Decode(raw, &config); err != nil {
			return config, errors.Wrap(err, "failed to decode llm config")
		}
	}
	return config.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.APIKey == "" {
		for _, env := range apiKeyEnv[c.Provider] {
			if key := os.Getenv(env); key != "" {
				c.APIKey = key
				break
			}
		}
	}
	return c
}

// WithProvider switches to provider and resets the model and API key to that
// provider's defaults. The config is returned unchanged when provider is empty
// or already selected.
func (c Config) WithProvider(provider string) Config {
	if provider == "" || provider == c.Provider {
		return c
	}
	c.Provider = provider
	c.Model = ""
	c.APIKey = ""
	return c.withDefaults()
}
