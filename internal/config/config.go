// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	Gemini      GeminiConfig
	OpenRouter  OpenRouterConfig
	Retry       RetryConfig
	RateLimit   RateLimitConfig
	ChatLog     ChatLogConfig
}

// GeminiConfig configures the primary inference backend. An empty APIKey
// removes Gemini from the candidate list.
type GeminiConfig struct {
	APIKey string
	Models []string
}

// OpenRouterConfig configures the alternate inference backend. It is only
// consulted when no Gemini key is configured.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Models  []string
}

// RetryConfig bounds per-candidate retries on transient failures.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

// RateLimitConfig throttles chat requests per client IP.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// ChatLogConfig controls NDJSON conversation logging.
type ChatLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Models: getEnvList("GEMINI_MODELS", []string{"gemini-2.5-flash"}),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", ""),
			Models:  getEnvList("OPENROUTER_MODELS", []string{"meta-llama/llama-3.3-70b-instruct:free"}),
		},
		Retry: RetryConfig{
			MaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			InitialInterval: getEnvDuration("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
			MaxInterval:     getEnvDuration("RETRY_MAX_INTERVAL", 10*time.Second),
			AttemptTimeout:  getEnvDuration("RETRY_ATTEMPT_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerSecond: 1,
			Burst:     getEnvInt("RATE_LIMIT_BURST", 5),
		},
		ChatLog: ChatLogConfig{
			Enabled:   getEnvBool("CHAT_LOG_ENABLED", false),
			Dir:       getEnv("CHAT_LOG_DIR", "./data/logs/chat"),
			QueueSize: getEnvInt("CHAT_LOG_QUEUE_SIZE", 1000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1")
	}
	if c.Retry.InitialInterval <= 0 || c.Retry.MaxInterval < c.Retry.InitialInterval {
		return fmt.Errorf("retry intervals must satisfy 0 < initial <= max")
	}
	if c.ChatLog.Enabled {
		if c.ChatLog.Dir == "" {
			return fmt.Errorf("CHAT_LOG_DIR cannot be empty")
		}
		if c.ChatLog.QueueSize <= 0 {
			return fmt.Errorf("CHAT_LOG_QUEUE_SIZE must be > 0")
		}
	}
	if len(c.Gemini.Models) == 0 && len(c.OpenRouter.Models) == 0 {
		return fmt.Errorf("at least one backend model must be configured")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// getEnvList parses a comma-separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
