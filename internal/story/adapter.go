package story

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/engine"
	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
)

var (
	// ErrNoCurrentState is returned when an operation needs a story in progress.
	ErrNoCurrentState = errors.New("no current story state")
	// ErrNoActionToRegenerate is returned when the current state carries no user action.
	ErrNoActionToRegenerate = errors.New("no user action found in current state metadata")
	// ErrIncompleteStory wraps a soft workflow outcome: generation could not
	// proceed because required story elements were missing.
	ErrIncompleteStory = errors.New("story generation stopped")
)

// Generator runs one narrative workflow. Satisfied by engine.Registry.
type Generator interface {
	Generate(ctx context.Context, cfg engine.Config, in engine.Input) (*engine.Outcome, error)
}

// MetadataSource produces save display metadata. Satisfied by MetadataGenerator.
type MetadataSource interface {
	Generate(ctx context.Context, provider llm.Provider, model, plot string, messages []Message) (*SaveMetadata, error)
}

// Adapter orchestrates story state transitions and persistence. The
// current state only advances when generation fully succeeds; any
// failure leaves it untouched.
type Adapter struct {
	generator Generator
	meta      MetadataSource
	repo      SaveRepository
	logger    *zap.Logger

	mu            sync.Mutex
	current       *StoryState
	currentSaveID string
	lastSaved     *StoryState
}

// NewAdapter creates a story adapter.
func NewAdapter(generator Generator, meta MetadataSource, repo SaveRepository, logger *zap.Logger) *Adapter {
	if generator == nil {
		log.Fatal().Msg("Generator is nil for story.Adapter")
	}
	if meta == nil {
		log.Fatal().Msg("MetadataGenerator is nil for story.Adapter")
	}
	if repo == nil {
		log.Fatal().Msg("SaveRepository is nil for story.Adapter")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for story.Adapter")
	}
	return &Adapter{
		generator: generator,
		meta:      meta,
		repo:      repo,
		logger:    logger.Named("story"),
	}
}

// CreateInitialState starts a fresh story and makes it current.
func (a *Adapter) CreateInitialState(plot, currentScene string, chatMessages []Message) *StoryState {
	state := &StoryState{
		Plot:         plot,
		CurrentScene: currentScene,
		SceneHistory: []string{},
		ChatMessages: chatMessages,
		Timestamp:    time.Now(),
		Meta:         StateMeta{Initial: true},
	}

	a.mu.Lock()
	a.current = state
	a.currentSaveID = ""
	a.lastSaved = nil
	a.mu.Unlock()

	a.logger.Info("created initial state")
	return state
}

// GenerateNextState advances the story by one exchange. The windowed
// transcript provides context; the superseded scene joins the history.
func (a *Adapter) GenerateNextState(ctx context.Context, userAction string, chatMessages []Message, maxScenes int, cfg engine.Config) (*StoryState, error) {
	a.mu.Lock()
	current := a.current
	a.mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("%w: nothing to generate from", ErrNoCurrentState)
	}

	actions, scenes := ExtractPairs(chatMessages, maxScenes)
	a.logger.Info("generating next state",
		zap.Int("context_pairs", len(scenes)),
		zap.String("workflow", string(cfg.Type)))

	outcome, err := a.generator.Generate(ctx, cfg, engine.Input{
		Plot:         current.Plot,
		CurrentScene: current.CurrentScene,
		UserAction:   userAction,
		SceneHistory: InterleavePairs(actions, scenes),
	})
	if err != nil {
		a.logger.Error("failed to generate next state", zap.Error(err))
		return nil, err
	}
	if outcome.SoftFailed() {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteStory, outcome.Soft)
	}

	newState := &StoryState{
		Plot:         current.Plot,
		CurrentScene: outcome.Narrative,
		SceneHistory: append(append([]string{}, scenes...), current.CurrentScene),
		ChatMessages: chatMessages,
		Timestamp:    time.Now(),
		Meta: StateMeta{
			Vision:       outcome.Vision,
			UserAction:   userAction,
			Provider:     string(cfg.Provider),
			Model:        cfg.Model,
			WorkflowType: string(cfg.Type),
		},
	}

	a.mu.Lock()
	a.current = newState
	a.mu.Unlock()

	a.logger.Info("generated new state")
	return newState, nil
}

// RegenerateCurrentState redoes the latest exchange, reusing the action
// recorded in the current state's metadata. A different workflow or
// model may be supplied to steer the retake.
func (a *Adapter) RegenerateCurrentState(ctx context.Context, chatMessages []Message, maxScenes int, cfg engine.Config) (*StoryState, error) {
	a.mu.Lock()
	current := a.current
	a.mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("%w: nothing to regenerate", ErrNoCurrentState)
	}

	userAction := current.Meta.UserAction
	if userAction == "" {
		return nil, ErrNoActionToRegenerate
	}

	actions, scenes := ExtractPairs(chatMessages, maxScenes)
	a.logger.Info("regenerating current state",
		zap.Int("context_pairs", len(scenes)),
		zap.String("workflow", string(cfg.Type)))

	prevScene := current.CurrentScene
	if len(scenes) > 0 {
		prevScene = scenes[len(scenes)-1]
	}

	// The latest pair is being replaced, so it stays out of the context.
	var contextHistory []string
	if len(actions) > 0 {
		contextHistory = InterleavePairs(actions[:len(actions)-1], scenes[:len(scenes)-1])
	}

	outcome, err := a.generator.Generate(ctx, cfg, engine.Input{
		Plot:         current.Plot,
		CurrentScene: prevScene,
		UserAction:   userAction,
		SceneHistory: contextHistory,
	})
	if err != nil {
		a.logger.Error("failed to regenerate state", zap.Error(err))
		return nil, err
	}
	if outcome.SoftFailed() {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteStory, outcome.Soft)
	}

	newState := &StoryState{
		Plot:         current.Plot,
		CurrentScene: outcome.Narrative,
		SceneHistory: append([]string{}, scenes...),
		ChatMessages: chatMessages,
		Timestamp:    time.Now(),
		Meta: StateMeta{
			Vision:       outcome.Vision,
			UserAction:   userAction,
			Provider:     string(cfg.Provider),
			Model:        cfg.Model,
			WorkflowType: string(cfg.Type),
			Regenerated:  true,
		},
	}

	a.mu.Lock()
	a.current = newState
	a.mu.Unlock()

	a.logger.Info("regenerated state")
	return newState, nil
}

// SaveCurrent persists the current state with freshly generated
// metadata. A state that merely continues the last saved one updates
// that save in place; anything else becomes a new save.
func (a *Adapter) SaveCurrent(ctx context.Context, cfg engine.Config) (string, error) {
	a.mu.Lock()
	current := a.current
	saveID := a.currentSaveID
	lastSaved := a.lastSaved
	a.mu.Unlock()
	if current == nil {
		return "", fmt.Errorf("%w: nothing to save", ErrNoCurrentState)
	}

	metadata, err := a.meta.Generate(ctx, cfg.Provider, cfg.Model, current.Plot, current.ChatMessages)
	if err != nil {
		a.logger.Error("failed to generate save metadata", zap.Error(err))
		return "", err
	}

	record := &SaveRecord{
		State:          *current,
		StoryName:      metadata.StoryName,
		OverallSummary: metadata.OverallSummary,
		LatestSummary:  metadata.LatestSummary,
	}

	if saveID != "" && current.IsContinuationOf(lastSaved) && !current.Meta.Regenerated {
		if err := a.repo.Update(ctx, saveID, record); err != nil {
			a.logger.Error("failed to update save", zap.String("save_id", saveID), zap.Error(err))
			return "", err
		}
		a.logger.Info("save updated", zap.String("save_id", saveID))
	} else {
		saveID, err = a.repo.Create(ctx, record)
		if err != nil {
			a.logger.Error("failed to create save", zap.Error(err))
			return "", err
		}
		a.logger.Info("new save created", zap.String("save_id", saveID))
	}

	snapshot := *current
	a.mu.Lock()
	a.currentSaveID = saveID
	a.lastSaved = &snapshot
	a.mu.Unlock()

	return saveID, nil
}

// LoadState restores a save and makes it the current state.
func (a *Adapter) LoadState(ctx context.Context, saveID string) (*StoryState, error) {
	record, err := a.repo.Load(ctx, saveID)
	if err != nil {
		a.logger.Error("failed to load save", zap.String("save_id", saveID), zap.Error(err))
		return nil, err
	}

	state := record.State
	snapshot := state

	a.mu.Lock()
	a.current = &state
	a.currentSaveID = saveID
	a.lastSaved = &snapshot
	a.mu.Unlock()

	a.logger.Info("state loaded", zap.String("save_id", saveID))
	return &state, nil
}

// ListSaves returns the available saves.
func (a *Adapter) ListSaves(ctx context.Context) ([]SaveSummary, error) {
	return a.repo.List(ctx)
}

// Current returns the current state, or nil when no story is active.
func (a *Adapter) Current() *StoryState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
