package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/prompts"
)

// Metadata generation runs cooler than narrative generation.
const metadataTemperature = 0.7

// SaveMetadata is the LLM-generated display metadata for a save.
type SaveMetadata struct {
	StoryName      string
	OverallSummary string
	LatestSummary  string
}

// MetadataGenerator produces save names and summaries with the same
// model the story runs on.
type MetadataGenerator struct {
	pool    *llm.Pool
	prompts *prompts.Provider
	logger  *zap.Logger
}

var _ MetadataSource = (*MetadataGenerator)(nil)

// NewMetadataGenerator creates a metadata generator.
func NewMetadataGenerator(pool *llm.Pool, provider *prompts.Provider, logger *zap.Logger) *MetadataGenerator {
	if pool == nil {
		log.Fatal().Msg("llm.Pool is nil for MetadataGenerator")
	}
	if provider == nil {
		log.Fatal().Msg("prompts.Provider is nil for MetadataGenerator")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for MetadataGenerator")
	}
	return &MetadataGenerator{
		pool:    pool,
		prompts: provider,
		logger:  logger.Named("metadata"),
	}
}

// Generate produces a story name plus overall and latest summaries.
// The name works from the last five pairs, the overall summary from the
// first ten, and the latest summary from the last three.
func (g *MetadataGenerator) Generate(ctx context.Context, provider llm.Provider, model, plot string, messages []Message) (*SaveMetadata, error) {
	client, err := g.pool.Get(provider, model)
	if err != nil {
		return nil, err
	}

	actions, scenes := ExtractPairs(messages, -1)

	name, err := g.complete(ctx, client, "metadata/story_name", map[string]string{
		"PLOT":   plot,
		"SCENES": formatScenePairs(lastPairs(actions, scenes, 5)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate story name: %w", err)
	}

	overall, err := g.complete(ctx, client, "metadata/overall_summary", map[string]string{
		"PLOT":   plot,
		"SCENES": formatScenePairs(firstPairs(actions, scenes, 10)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate overall summary: %w", err)
	}

	latest, err := g.complete(ctx, client, "metadata/latest_summary", map[string]string{
		"SCENES": formatScenePairs(lastPairs(actions, scenes, 3)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest summary: %w", err)
	}

	return &SaveMetadata{
		StoryName:      strings.TrimSpace(name),
		OverallSummary: strings.TrimSpace(overall),
		LatestSummary:  strings.TrimSpace(latest),
	}, nil
}

func (g *MetadataGenerator) complete(ctx context.Context, client llm.Client, key string, vars map[string]string) (string, error) {
	prompt, err := g.prompts.Render(key, vars)
	if err != nil {
		return "", err
	}
	temp := metadataTemperature
	text, _, err := client.Complete(ctx, prompt, llm.Params{Temperature: &temp})
	return text, err
}

type scenePair struct {
	action string
	scene  string
}

func lastPairs(actions, scenes []string, n int) []scenePair {
	pairs := zipPairs(actions, scenes)
	if len(pairs) > n {
		return pairs[len(pairs)-n:]
	}
	return pairs
}

func firstPairs(actions, scenes []string, n int) []scenePair {
	pairs := zipPairs(actions, scenes)
	if len(pairs) > n {
		return pairs[:n]
	}
	return pairs
}

func zipPairs(actions, scenes []string) []scenePair {
	n := len(actions)
	if len(scenes) < n {
		n = len(scenes)
	}
	pairs := make([]scenePair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, scenePair{action: actions[i], scene: scenes[i]})
	}
	return pairs
}

func formatScenePairs(pairs []scenePair) string {
	var b strings.Builder
	for i, p := range pairs {
		fmt.Fprintf(&b, "Scene %d:\nAction: %s\nResult: %s\n\n", i+1, p.action, p.scene)
	}
	return b.String()
}
