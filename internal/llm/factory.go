package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name returns (nil, nil): model analysis is disabled and
// every clause takes the keyword fallback path.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into a provider config.
// Missing credentials are filled from the provider's usual environment variable.
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	config := Config{
		Provider:    llmConfig.Provider,
		Model:       llmConfig.Model,
		APIKey:      llmConfig.APIKey,
		BaseURL:     llmConfig.BaseURL,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}

	switch strings.ToLower(config.Provider) {
	case "openai":
		config.APIKey = firstNonEmpty(config.APIKey, os.Getenv("OPENAI_API_KEY"))
	case "anthropic", "claude":
		config.APIKey = firstNonEmpty(config.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	case "gemini", "google":
		config.APIKey = firstNonEmpty(config.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	case "ollama":
		config.BaseURL = firstNonEmpty(config.BaseURL, os.Getenv("OLLAMA_BASE_URL"))
	}

	return config
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
