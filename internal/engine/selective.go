package engine

import (
	"context"
	"fmt"
	"strings"
)

// Actor types a selective critic can route to.
var actorTypes = []string{"EXPLORATION", "CONFLICT", "INTERACTION", "TRANSITION", "REVELATION"}

const defaultActorType = "EXPLORATION"

// actorFocus holds the per-type guidance injected into the actor prompt.
var actorFocus = map[string]string{
	"EXPLORATION": `Focus on physical discovery and environmental detail:
- Concrete sensory information about the space
- Observable clues and significant details
- Physical navigation and investigation methods
- Environmental changes and reactions`,
	"CONFLICT": `Focus on tangible tension and physical stakes:
- Clear positions and tactical elements
- Observable advantages and vulnerabilities
- Physical consequences and risks
- Environmental factors affecting the conflict`,
	"INTERACTION": `Focus on observable character dynamics:
- Physical positioning and body language
- Concrete actions and reactions
- Environmental influence on interaction
- Tangible shifts in relationships`,
	"TRANSITION": `Focus on physical movement and change:
- Clear progression of space and time
- Observable transformations
- Physical connections between states
- Environmental shifts and adjustments`,
	"REVELATION": `Focus on tangible discovery and impact:
- Physical manifestation of revelations
- Observable reactions and consequences
- Concrete changes in understanding
- Environmental reflection of discovery`,
}

// classifyActor extracts the actor type from a critic reply. Only the
// line following the SELECTED ACTOR marker is scanned; anything
// unrecognized falls back to exploration.
func classifyActor(reply string) string {
	if _, after, found := strings.Cut(reply, "SELECTED ACTOR:"); found {
		line := after
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		for _, t := range actorTypes {
			if strings.Contains(line, t) {
				return t
			}
		}
	}
	actorFallbackTotal.Inc()
	return defaultActorType
}

// selectiveStages: a critic analyzes the moment and picks an actor type,
// the specialized actor drafts a policy, then a responder writes the
// scene from policy plus action.
func (w *Workflow) selectiveStages() []stage {
	return []stage{
		{
			name:      "selective_critic",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" || rs.in.CurrentScene == "" || rs.in.UserAction == "" {
					return softMissingElements, nil
				}
				prompt, err := w.prompts.Render("selective/critic", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"USER_ACTION":   rs.in.UserAction,
				})
				if err != nil {
					return "", err
				}
				reply, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.analysis = reply
				rs.actorType = classifyActor(reply)
				return "", nil
			},
		},
		{
			name:      "specialized_actor",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("selective/actor", map[string]string{
					"ACTOR_TYPE":    rs.actorType,
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"ANALYSIS":      rs.analysis,
					"ACTOR_FOCUS":   actorFocus[rs.actorType],
				})
				if err != nil {
					return "", err
				}
				policy, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.policy = policy
				return "", nil
			},
		},
		{
			name:      "generate_response",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("selective/responder", map[string]string{
					"CURRENT_SCENE": rs.in.CurrentScene,
					"ACTOR_TYPE":    rs.actorType,
					"POLICY":        rs.policy,
					"USER_ACTION":   rs.in.UserAction,
				})
				if err != nil {
					return "", err
				}
				narrative, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.narrative = narrative
				rs.vision = fmt.Sprintf("\nCRITIC ANALYSIS:\n%s\n\n%s ACTOR POLICY:\n%s\n", rs.analysis, rs.actorType, rs.policy)
				return "", nil
			},
		},
	}
}
