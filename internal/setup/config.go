package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
)

const defaultRewriteModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"

type Config struct {
	AWSRegion       string
	RewriteModelID  string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string

	ValidationTimeout time.Duration
	GenerationTimeout time.Duration
	RetryMaxAttempts  int
	RetryBaseDelay    time.Duration
	RetryMultiplier   float64
	MaxInflight       int
	DefaultDomain     string

	LogLevel string
	APIPort  string

	RedisAddr     string
	RedisPassword string
	ConsumerName  string
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		RewriteModelID:  getEnv("REWRITE_MODEL_ID", defaultRewriteModelID),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),

		ValidationTimeout: getEnvDuration("ARC_VALIDATION_TIMEOUT", 10*time.Second),
		GenerationTimeout: getEnvDuration("ARC_GENERATION_TIMEOUT", 30*time.Second),
		RetryMaxAttempts:  getEnvInt("ARC_RETRY_MAX_ATTEMPTS", 2),
		RetryBaseDelay:    getEnvDuration("ARC_RETRY_BASE_DELAY", 200*time.Millisecond),
		RetryMultiplier:   getEnvFloat("ARC_RETRY_MULTIPLIER", 2.0),
		MaxInflight:       getEnvInt("ARC_MAX_INFLIGHT", 8),
		DefaultDomain:     getEnv("ARC_DEFAULT_DOMAIN", "General"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIPort:  getEnv("ARC_API_PORT", "18082"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		ConsumerName:  getEnv("HOSTNAME", "arc-consumer"),
	}
}

// Policy is the retry policy shared by validation and generation.
func (c *Config) Policy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = c.RetryMaxAttempts
	policy.BaseDelay = c.RetryBaseDelay
	policy.Multiplier = c.RetryMultiplier
	return policy
}

// ModelID is the default generation model of the configured provider.
func (c *Config) ModelID() string {
	if c.DefaultProvider == "openai" {
		return c.OpenAIModelID
	}
	return c.RewriteModelID
}

// RequestDeadline is the longest a single rewrite may take.
func RequestDeadline(c *Config) time.Duration {
	return c.ValidationTimeout + c.Policy().Budget(c.GenerationTimeout)
}

func (c *Config) Validate() error {
	if c.ValidationTimeout <= 0 || c.GenerationTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.MaxInflight < 0 {
		return fmt.Errorf("ARC_MAX_INFLIGHT must not be negative, got %d", c.MaxInflight)
	}
	switch c.DefaultProvider {
	case "bedrock":
	case "openai":
		if c.OpenAIKey == "" || c.OpenAIModelID == "" {
			return fmt.Errorf("OPEN_AI_KEY and OPEN_AI_MODEL_ID are required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM_PROVIDER %q", c.DefaultProvider)
	}
	if c.ModelID() == "" {
		return fmt.Errorf("no rewrite model configured")
	}
	return c.Policy().Validate()
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
