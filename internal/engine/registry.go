package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/prompts"
)

// Registry builds workflows on demand from shared dependencies. It is
// the generation entry point the story layer runs against.
type Registry struct {
	pool    *llm.Pool
	prompts *prompts.Provider
	logger  *zap.Logger
}

// NewRegistry creates a workflow registry.
func NewRegistry(pool *llm.Pool, provider *prompts.Provider, logger *zap.Logger) *Registry {
	if pool == nil {
		log.Fatal().Msg("llm.Pool is nil for engine.Registry")
	}
	if provider == nil {
		log.Fatal().Msg("prompts.Provider is nil for engine.Registry")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for engine.Registry")
	}
	return &Registry{pool: pool, prompts: provider, logger: logger}
}

// Generate runs one workflow for the given configuration and input.
func (r *Registry) Generate(ctx context.Context, cfg Config, in Input) (*Outcome, error) {
	w, err := New(cfg, r.pool, r.prompts, r.logger)
	if err != nil {
		return nil, err
	}
	return w.Run(ctx, in)
}
