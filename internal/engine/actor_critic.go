package engine

import (
	"context"
	"fmt"
)

// actorCriticStages: an actor proposes a narrative policy, then a critic
// weighs the user's action against it and writes the scene.
func (w *Workflow) actorCriticStages() []stage {
	return []stage{
		{
			name:      "actor_step",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" || rs.in.CurrentScene == "" {
					return softMissingElements, nil
				}
				prompt, err := w.prompts.Render("actor_critic/actor", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
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
			name: "process_action",
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.UserAction == "" {
					return softMissingUserAction, nil
				}
				return "", nil
			},
		},
		{
			name:      "critic_step",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("actor_critic/critic", map[string]string{
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"POLICY":        rs.policy,
					"USER_ACTION":   rs.in.UserAction,
				})
				if err != nil {
					return "", err
				}
				reply, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				analysis, response, _ := ParseSections(reply, w.logger)
				rs.analysis = analysis
				rs.narrative = response
				rs.vision = fmt.Sprintf("ACTOR:\n%s\n\nCRITIC:\n%s", rs.policy, analysis)
				return "", nil
			},
		},
	}
}
