package engine

import "context"

const optimizingActorMaxTokens = 4096

// optimizingStages: a critic assesses trajectory, pacing and needs while
// seeing the action, then an actor continues the story from the analysis
// without seeing the raw action. The actor gets a raised token limit so
// long scenes do not truncate.
func (w *Workflow) optimizingStages() []stage {
	return []stage{
		{
			name:      "critic_step",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" || rs.in.CurrentScene == "" || rs.in.UserAction == "" {
					return softMissingElements, nil
				}
				prompt, err := w.prompts.Render("optimizing/critic", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"USER_ACTION":   rs.in.UserAction,
				})
				if err != nil {
					return "", err
				}
				analysis, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.analysis = analysis
				return "", nil
			},
		},
		{
			name:      "actor_step",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("optimizing/actor", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"ANALYSIS":      rs.analysis,
				})
				if err != nil {
					return "", err
				}
				narrative, err := w.complete(ctx, prompt, optimizingActorMaxTokens)
				if err != nil {
					return "", err
				}
				rs.narrative = narrative
				rs.vision = rs.analysis
				return "", nil
			},
		},
	}
}
