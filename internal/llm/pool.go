package llm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type clientKey struct {
	provider Provider
	model    string
}

// Pool builds and caches one client per provider/model pair.
// Clients are safe for concurrent use and live for the pool's lifetime.
type Pool struct {
	settings Settings
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[clientKey]Client
}

// NewPool creates a client pool over the configured provider settings.
func NewPool(settings Settings, logger *zap.Logger) *Pool {
	if logger == nil {
		panic("llm: logger must not be nil")
	}
	return &Pool{
		settings: settings,
		logger:   logger.Named("llm"),
		clients:  make(map[clientKey]Client),
	}
}

// Get returns the cached client for the pair, building it on first use.
func (p *Pool) Get(provider Provider, model string) (Client, error) {
	if _, err := ParseProvider(string(provider)); err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedProvider, provider)
	}

	key := clientKey{provider: provider, model: model}

	p.mu.RLock()
	client, ok := p.clients[key]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another goroutine may have built it while we waited for the lock.
	if client, ok := p.clients[key]; ok {
		return client, nil
	}

	client, err := p.build(provider, model)
	if err != nil {
		return nil, err
	}

	p.logger.Info("ai client created",
		zap.String("provider", string(provider)),
		zap.String("model", model))
	p.clients[key] = client
	return client, nil
}

func (p *Pool) build(provider Provider, model string) (Client, error) {
	switch provider {
	case ProviderOllama:
		return newOllamaClient(p.settings.OllamaBaseURL, model, p.settings.RequestTimeout, p.logger)
	case ProviderOpenAI:
		return newOpenAIClient(ProviderOpenAI, p.settings.OpenAIAPIKey, p.settings.OpenAIBaseURL, model, p.settings.RequestTimeout, p.logger)
	case ProviderTogether:
		return newOpenAIClient(ProviderTogether, p.settings.TogetherAPIKey, p.settings.TogetherBaseURL, model, p.settings.RequestTimeout, p.logger)
	case ProviderAnthropic:
		return newAnthropicClient(p.settings.AnthropicAPIKey, model, p.settings.RequestTimeout, p.logger)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedProvider, provider)
	}
}
