package engine

import "context"

// dimensionalStages: a critic analyzes the state across four dimensions
// while seeing the action, then an actor writes the scene from the
// analysis alone. The actor never sees the raw action, which keeps the
// surprise of the action's consequences in the narrative.
func (w *Workflow) dimensionalStages() []stage {
	return []stage{
		{
			name:      "critic_analysis",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" || rs.in.CurrentScene == "" || rs.in.UserAction == "" {
					return softMissingElements, nil
				}
				prompt, err := w.prompts.Render("dimensional/critic", map[string]string{
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
			name:      "actor_response",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("dimensional/actor", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
					"ANALYSIS":      rs.analysis,
				})
				if err != nil {
					return "", err
				}
				narrative, err := w.complete(ctx, prompt, 0)
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
