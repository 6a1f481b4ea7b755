package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testSettings() Settings {
	return Settings{
		OllamaBaseURL:   "http://localhost:11434",
		OpenAIAPIKey:    "sk-test",
		TogetherBaseURL: "https://api.together.xyz/v1",
	}
}

func TestPoolGet(t *testing.T) {
	t.Run("caches one client per provider and model", func(t *testing.T) {
		pool := NewPool(testSettings(), zap.NewNop())

		first, err := pool.Get(ProviderOllama, "aya-expanse:8b-q6_K")
		assert.NoError(t, err)
		again, err := pool.Get(ProviderOllama, "aya-expanse:8b-q6_K")
		assert.NoError(t, err)
		assert.Same(t, first, again)

		other, err := pool.Get(ProviderOllama, "llama3:8b")
		assert.NoError(t, err)
		assert.NotSame(t, first, other)
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		pool := NewPool(testSettings(), zap.NewNop())
		_, err := pool.Get(Provider("bard"), "some-model")
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})

	t.Run("hosted providers need a credential", func(t *testing.T) {
		pool := NewPool(Settings{}, zap.NewNop())

		_, err := pool.Get(ProviderOpenAI, "gpt-4o-mini")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		_, err = pool.Get(ProviderAnthropic, "claude-3-5-haiku-latest")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		_, err = pool.Get(ProviderTogether, "meta-llama/Llama-3-8b-chat-hf")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("together builds with its own credential", func(t *testing.T) {
		pool := NewPool(Settings{TogetherAPIKey: "tk-test", TogetherBaseURL: "https://api.together.xyz/v1"}, zap.NewNop())
		_, err := pool.Get(ProviderTogether, "meta-llama/Llama-3-8b-chat-hf")
		assert.NoError(t, err)
	})
}

func TestParseProvider(t *testing.T) {
	for _, valid := range []string{"ollama", "openai", "anthropic", "together"} {
		p, err := ParseProvider(valid)
		assert.NoError(t, err)
		assert.Equal(t, Provider(valid), p)
	}
	_, err := ParseProvider("cohere")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.0, calculateCost(0, 0), 1e-12)
	// 1M prompt tokens at 0.1 USD plus 1M completion tokens at 0.4 USD.
	assert.InDelta(t, 0.5, calculateCost(1_000_000, 1_000_000), 1e-9)
}
