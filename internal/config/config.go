package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration for the narrative server.
type Config struct {
	// HTTP server
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// PostgreSQL. When empty the server keeps saves in memory only.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Provider endpoints and credentials
	OllamaBaseURL    string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `envconfig:"OPENAI_BASE_URL"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	TogetherAPIKey   string `envconfig:"TOGETHER_API_KEY"`
	TogetherBaseURL  string `envconfig:"TOGETHER_BASE_URL" default:"https://api.together.xyz/v1"`

	// Generation settings
	AITimeout        time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIMaxAttempts    int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIBaseRetryDelay time.Duration `envconfig:"AI_BASE_RETRY_DELAY" default:"1s"`
	DefaultProvider  string        `envconfig:"DEFAULT_PROVIDER" default:"ollama"`
	DefaultModel     string        `envconfig:"DEFAULT_MODEL" default:"aya-expanse:8b-q6_K"`
	DefaultWorkflow  string        `envconfig:"DEFAULT_WORKFLOW" default:"plan-adapt"`
	MaxContextScenes int           `envconfig:"MAX_CONTEXT_SCENES" default:"6"`

	// Optional override for the embedded prompt templates.
	PromptsDir string `envconfig:"PROMPTS_DIR"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Configuration loaded:")
	log.Printf("  HTTP Port: %s", cfg.HTTPPort)
	log.Printf("  Database URL: %s", maskedDSN(cfg.DatabaseURL))
	log.Printf("  Ollama Base URL: %s", cfg.OllamaBaseURL)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	log.Printf("  AI Max Attempts: %d", cfg.AIMaxAttempts)
	log.Printf("  AI Base Retry Delay: %v", cfg.AIBaseRetryDelay)
	log.Printf("  Default Provider: %s", cfg.DefaultProvider)
	log.Printf("  Default Model: %s", cfg.DefaultModel)
	log.Printf("  Default Workflow: %s", cfg.DefaultWorkflow)
	log.Printf("  Max Context Scenes: %d", cfg.MaxContextScenes)

	return &cfg, nil
}

// maskedDSN hides the password portion of a DSN for logging.
func maskedDSN(dsn string) string {
	if dsn == "" {
		return "[not set, using in-memory store]"
	}
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[set]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}
