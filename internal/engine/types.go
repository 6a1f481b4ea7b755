package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
)

var (
	// ErrRunTimeout indicates the whole workflow run exceeded its deadline.
	ErrRunTimeout = errors.New("workflow run timed out")
	// ErrUnknownWorkflowType is returned for a workflow type outside the known set.
	ErrUnknownWorkflowType = errors.New("unknown workflow type")
)

// Type selects a workflow variant.
type Type string

const (
	TypePlanAdapt         Type = "plan-adapt"
	TypeActorCritic       Type = "actor-critic"
	TypeDimensionalCritic Type = "dimensional-critic"
	TypeSelectiveCritic   Type = "selective-critic"
	TypeOptimizingCritic  Type = "optimizing-critic"
	TypeTimescaleCritic   Type = "timescale-actor-critic"
)

// ParseType validates a workflow type name.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePlanAdapt, TypeActorCritic, TypeDimensionalCritic,
		TypeSelectiveCritic, TypeOptimizingCritic, TypeTimescaleCritic:
		return Type(s), nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownWorkflowType, s)
	}
}

// Config selects the model and workflow variant for a single run.
type Config struct {
	Provider llm.Provider
	Model    string
	Type     Type
	Timeout  time.Duration
}

// Input is the story material a run operates on. SceneHistory is an
// alternating action/scene sequence in chronological order.
type Input struct {
	Plot         string
	CurrentScene string
	UserAction   string
	SceneHistory []string
}

// Outcome is the result of a run. A soft outcome carries no narrative;
// it reports why generation could not proceed without being an error.
type Outcome struct {
	Narrative string
	Vision    string
	Soft      string
}

// SoftFailed reports whether the run ended without producing a narrative.
func (o *Outcome) SoftFailed() bool {
	return o.Soft != ""
}

// Generation temperature shared by all narrative stages.
const narrativeTemperature = 0.8

// Soft outcome messages.
const (
	softMissingElements   = "Missing required story elements."
	softMissingUserAction = "Missing user action."
	softMissingPlot       = "Missing plot information."
	softMissingScene      = "Missing current scene."
	softMissingPolicies   = "Missing policies for pacing."
)

// formatHistory renders the scene history for prompt context.
func formatHistory(scenes []string) string {
	if len(scenes) == 0 {
		return "No previous scenes"
	}
	lines := make([]string, 0, len(scenes))
	for i, scene := range scenes {
		lines = append(lines, fmt.Sprintf("Scene %d: %s", i+1, scene))
	}
	return strings.Join(lines, "\n")
}
