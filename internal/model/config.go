package model

import "time"

// Config holds all runtime configuration.
// Keys use the same names in the YAML file, CLAUSEWISE_* env vars and viper.
type Config struct {
	Segment      SegmentConfig      `yaml:"segment" mapstructure:"segment"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// SegmentConfig bounds clause size in words
type SegmentConfig struct {
	MinWords int `yaml:"min_words" mapstructure:"min_words"`
	MaxWords int `yaml:"max_words" mapstructure:"max_words"`
}

// LLMConfig selects and tunes the generative collaborator
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, gemini, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds, 0 = no client-side limit
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	ClauseWorkers   int `yaml:"clause_workers" mapstructure:"clause_workers"`     // 1 = sequential
	DocumentWorkers int `yaml:"document_workers" mapstructure:"document_workers"` // batch mode only
}

// RateLimitingConfig throttles collaborator calls per provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig applies to fetching documents by URL
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ServerConfig applies to `clausewise serve`
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	HealthCacheTTL time.Duration `yaml:"health_cache_ttl" mapstructure:"health_cache_ttl"`
	UploadDir      string        `yaml:"upload_dir,omitempty" mapstructure:"upload_dir"` // "" = os.TempDir()
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Segment: SegmentConfig{
			MinWords: 10,
			MaxWords: 150,
		},
		LLM: LLMConfig{
			Provider:    "", // Disabled: every clause is keyword-scored
			Timeout:     60,
			MaxTokens:   400,
			Temperature: 0.2,
		},
		Concurrency: ConcurrencyConfig{
			ClauseWorkers:   4,
			DocumentWorkers: 2,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "ClauseWise/0.1 (+https://github.com/ppiankov/clausewise)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadBytes: 20 << 20,
			HealthCacheTTL: 30 * time.Second,
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}
