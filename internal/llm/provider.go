package llm

import (
	"context"
	"errors"
	"time"
)

// ErrCollaboratorFailure wraps every failure to get usable text from a provider
var ErrCollaboratorFailure = errors.New("collaborator failure")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the raw model text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Ping checks that the provider is configured and reachable
	Ping(ctx context.Context) error
}

// CompletionRequest contains the input for one model call
type CompletionRequest struct {
	// System is the system instruction
	System string

	// Prompt is the user prompt
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; 0 uses the configured value
	Temperature float32
}

// CompletionResponse contains the model's raw output
type CompletionResponse struct {
	// Text is the generated text, untrusted and possibly malformed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible servers)
	BaseURL string

	// Timeout for API requests in seconds; 0 leaves the call unbounded
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60,
		MaxTokens:   400,
		Temperature: 0.2,
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// resolve fills request fields left empty from the provider config
func (c Config) resolve(req CompletionRequest, defaultModel string) CompletionRequest {
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 400
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
	return req
}
