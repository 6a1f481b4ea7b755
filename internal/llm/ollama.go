package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ollamaClient talks to a local or remote Ollama server over its native API.
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) (Client, error) {
	// api.NewClient wants the URL without the /v1 suffix.
	trimmed := strings.TrimSuffix(baseURL, "/v1")
	trimmed = strings.TrimSuffix(trimmed, "/")

	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama base URL '%s': %w", trimmed, err)
	}

	httpClient := &http.Client{Timeout: timeout}
	return &ollamaClient{
		client:  api.NewClient(parsedURL, httpClient),
		model:   model,
		timeout: timeout,
		logger:  logger.Named("ollama"),
	}, nil
}

func (c *ollamaClient) Complete(ctx context.Context, prompt string, params Params) (string, Usage, error) {
	usage := Usage{}

	if strings.TrimSpace(prompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderOllama), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}

	options := map[string]interface{}{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   func(b bool) *bool { return &b }(false),
		Options:  options,
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	c.logger.Debug("sending completion request",
		zap.String("model", c.model),
		zap.Int("prompt_bytes", len(prompt)))

	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})

	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("completion timed out",
				zap.Duration("timeout", c.timeout), zap.Duration("duration", duration))
		} else {
			c.logger.Error("completion request failed",
				zap.Duration("duration", duration), zap.Error(err))
		}
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderOllama), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if resp.Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderOllama), "model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderOllama), "model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"provider": string(ProviderOllama), "model": c.model}).Observe(duration.Seconds())

	text := resp.Message.Content
	c.logger.Debug("completion received",
		zap.Duration("duration", duration), zap.Int("response_chars", len(text)))

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	// Local inference, no billing.
	usage.EstimatedCostUSD = 0
	observeUsage(ProviderOllama, c.model, usage)

	return text, usage, nil
}
