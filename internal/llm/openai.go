package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// openAIClient serves both the OpenAI API and OpenAI-compatible endpoints
// such as Together, switched by base URL.
type openAIClient struct {
	client   *openaigo.Client
	provider Provider
	model    string
	logger   *zap.Logger
}

func newOpenAIClient(provider Provider, apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, provider)
	}
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &openAIClient{
		client:   openaigo.NewClientWithConfig(cfg),
		provider: provider,
		model:    model,
		logger:   logger.Named(string(provider)),
	}, nil
}

func (c *openAIClient) Complete(ctx context.Context, prompt string, params Params) (string, Usage, error) {
	usage := Usage{}

	if strings.TrimSpace(prompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(c.provider), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}

	startTime := time.Now()
	c.logger.Debug("sending completion request",
		zap.String("model", c.model),
		zap.Int("prompt_bytes", len(prompt)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"provider": string(c.provider), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(c.provider), "model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"provider": string(c.provider), "model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"provider": string(c.provider), "model": c.model}).Observe(duration.Seconds())

	text := resp.Choices[0].Message.Content
	c.logger.Debug("completion received",
		zap.Duration("duration", duration), zap.Int("response_chars", len(text)))

	if resp.Usage.TotalTokens > 0 {
		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
	} else {
		usage.PromptTokens = estimateTokens(c.model, prompt)
		usage.CompletionTokens = estimateTokens(c.model, text)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	usage.EstimatedCostUSD = calculateCost(usage.PromptTokens, usage.CompletionTokens)
	observeUsage(c.provider, c.model, usage)

	return text, usage, nil
}
