package llm

import (
	"context"
	"errors"
	"time"
)

// Per-million-token prices used for the estimated cost metric.
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

var (
	// ErrGenerationFailed wraps any provider-side completion failure.
	ErrGenerationFailed = errors.New("ai text generation failed")
	// ErrUnsupportedProvider is returned for a provider outside the known set.
	ErrUnsupportedProvider = errors.New("unsupported ai provider")
	// ErrMissingAPIKey is returned when a hosted provider has no credential configured.
	ErrMissingAPIKey = errors.New("missing api key for provider")
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderTogether  Provider = "together"
)

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderTogether:
		return Provider(s), nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// Params are optional generation parameters. Pointers distinguish
// "not set" from an explicit zero.
type Params struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// Usage reports token counts and the estimated request cost.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// Client is a single-turn completion client for one provider/model pair.
type Client interface {
	// Complete sends one prompt and returns the generated text.
	Complete(ctx context.Context, prompt string, params Params) (string, Usage, error)
}

// Settings carries provider endpoints and credentials for the pool.
type Settings struct {
	OllamaBaseURL   string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	TogetherAPIKey  string
	TogetherBaseURL string
	RequestTimeout  time.Duration
}

// calculateCost estimates the request cost from token counts.
func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
