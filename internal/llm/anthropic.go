package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const anthropicDefaultMaxTokens = 2048

// anthropicClient talks to the Anthropic Messages API.
type anthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

func newAnthropicClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, ProviderAnthropic)
	}
	httpClient := &http.Client{Timeout: timeout}
	return &anthropicClient{
		client: anthropic.NewClient(apiKey, anthropic.WithHTTPClient(httpClient)),
		model:  model,
		logger: logger.Named("anthropic"),
	}, nil
}

func (c *anthropicClient) Complete(ctx context.Context, prompt string, params Params) (string, Usage, error) {
	usage := Usage{}

	if strings.TrimSpace(prompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderAnthropic), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}

	maxTokens := intVal(params.MaxTokens)
	if maxTokens == 0 {
		// The Messages API requires an explicit token limit.
		maxTokens = anthropicDefaultMaxTokens
	}

	req := anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens: maxTokens,
	}
	if params.Temperature != nil {
		temp := float32(*params.Temperature)
		req.Temperature = &temp
	}
	if params.TopP != nil {
		topP := float32(*params.TopP)
		req.TopP = &topP
	}

	startTime := time.Now()
	c.logger.Debug("sending completion request",
		zap.String("model", c.model),
		zap.Int("prompt_bytes", len(prompt)))

	resp, err := c.client.CreateMessages(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderAnthropic), "model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(resp.Content) == 0 || resp.Content[0].GetText() == "" {
		aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderAnthropic), "model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"provider": string(ProviderAnthropic), "model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"provider": string(ProviderAnthropic), "model": c.model}).Observe(duration.Seconds())

	text := resp.Content[0].GetText()
	c.logger.Debug("completion received",
		zap.Duration("duration", duration), zap.Int("response_chars", len(text)))

	usage.PromptTokens = resp.Usage.InputTokens
	usage.CompletionTokens = resp.Usage.OutputTokens
	usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	usage.EstimatedCostUSD = calculateCost(usage.PromptTokens, usage.CompletionTokens)
	observeUsage(ProviderAnthropic, c.model, usage)

	return text, usage, nil
}
