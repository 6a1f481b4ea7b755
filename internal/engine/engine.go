package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/prompts"
)

const (
	defaultRunTimeout = 120 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// runState accumulates intermediate products as stages execute.
type runState struct {
	in      Input
	history string

	analysis  string
	policy    string
	longTerm  string
	shortTerm string
	merged    string
	actorType string

	narrative string
	vision    string
}

// stage is one step of a workflow. Stages that call the model are
// retryable; pure gates run once. execute returns a soft message to end
// the run without a narrative, or an error to fail (and maybe retry) it.
type stage struct {
	name      string
	retryable bool
	execute   func(ctx context.Context, rs *runState) (soft string, err error)
}

// Workflow runs one narrative generation as an ordered stage pipeline.
type Workflow struct {
	typ        Type
	client     llm.Client
	prompts    *prompts.Provider
	logger     *zap.Logger
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
}

// New builds a workflow for the given configuration, resolving the
// model client through the pool.
func New(cfg Config, pool *llm.Pool, provider *prompts.Provider, logger *zap.Logger) (*Workflow, error) {
	if _, err := ParseType(string(cfg.Type)); err != nil {
		return nil, err
	}
	client, err := pool.Get(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Workflow{
		typ:        cfg.Type,
		client:     client,
		prompts:    provider,
		logger:     logger.Named("engine").With(zap.String("workflow", string(cfg.Type))),
		timeout:    timeout,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}, nil
}

// Run executes the workflow's stages in order under a single deadline.
func (w *Workflow) Run(ctx context.Context, in Input) (*Outcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	rs := &runState{in: in, history: formatHistory(in.SceneHistory)}

	stages, err := w.stages()
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	w.logger.Info("starting workflow run",
		zap.Int("history_scenes", len(in.SceneHistory)))

	for _, st := range stages {
		soft, err := w.runStage(runCtx, st, rs)
		if err != nil {
			workflowRunsTotal.WithLabelValues(string(w.typ), "error").Inc()
			if errors.Is(err, context.DeadlineExceeded) && runCtx.Err() != nil {
				w.logger.Error("workflow run timed out",
					zap.String("stage", st.name), zap.Duration("timeout", w.timeout))
				return nil, fmt.Errorf("%w after %v in stage '%s'", ErrRunTimeout, w.timeout, st.name)
			}
			return nil, err
		}
		if soft != "" {
			w.logger.Warn("workflow run stopped early",
				zap.String("stage", st.name), zap.String("reason", soft))
			workflowRunsTotal.WithLabelValues(string(w.typ), "soft").Inc()
			return &Outcome{Soft: soft}, nil
		}
	}

	duration := time.Since(startTime)
	w.logger.Info("workflow run complete", zap.Duration("duration", duration))
	workflowRunsTotal.WithLabelValues(string(w.typ), "success").Inc()
	workflowRunDuration.WithLabelValues(string(w.typ)).Observe(duration.Seconds())

	return &Outcome{Narrative: rs.narrative, Vision: rs.vision}, nil
}

// runStage executes one stage, retrying model-backed stages with a
// constant delay between attempts.
func (w *Workflow) runStage(ctx context.Context, st stage, rs *runState) (string, error) {
	if !st.retryable {
		return st.execute(ctx, rs)
	}

	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		soft, err := st.execute(ctx, rs)
		if err == nil {
			return soft, nil
		}
		lastErr = err
		w.logger.Warn("stage attempt failed",
			zap.String("stage", st.name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", w.attempts),
			zap.Error(err))

		if attempt < w.attempts {
			select {
			case <-time.After(w.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("stage '%s' failed after %d attempts: %w", st.name, w.attempts, lastErr)
}

// complete issues one model call with the shared narrative temperature.
func (w *Workflow) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	temp := narrativeTemperature
	params := llm.Params{Temperature: &temp}
	if maxTokens > 0 {
		params.MaxTokens = &maxTokens
	}
	text, _, err := w.client.Complete(ctx, prompt, params)
	return text, err
}

// stages returns the ordered stage list for the workflow's variant.
func (w *Workflow) stages() ([]stage, error) {
	switch w.typ {
	case TypePlanAdapt:
		return w.planAdaptStages(), nil
	case TypeActorCritic:
		return w.actorCriticStages(), nil
	case TypeDimensionalCritic:
		return w.dimensionalStages(), nil
	case TypeSelectiveCritic:
		return w.selectiveStages(), nil
	case TypeOptimizingCritic:
		return w.optimizingStages(), nil
	case TypeTimescaleCritic:
		return w.timescaleStages(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownWorkflowType, w.typ)
	}
}
