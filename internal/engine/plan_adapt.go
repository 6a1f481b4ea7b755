package engine

import "context"

// planAdaptStages: a planner envisions story elements, then an adapter
// writes the scene around the user's action.
func (w *Workflow) planAdaptStages() []stage {
	return []stage{
		{
			name:      "envision_story",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" || rs.in.CurrentScene == "" {
					return softMissingElements, nil
				}
				prompt, err := w.prompts.Render("plan_adapt/planner", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"CURRENT_SCENE": rs.in.CurrentScene,
				})
				if err != nil {
					return "", err
				}
				vision, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.policy = vision
				return "", nil
			},
		},
		{
			name: "process_input",
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.UserAction == "" {
					return softMissingUserAction, nil
				}
				return "", nil
			},
		},
		{
			name:      "generate_response",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				prompt, err := w.prompts.Render("plan_adapt/adapter", map[string]string{
					"HISTORY":          rs.history,
					"CURRENT_SCENE":    rs.in.CurrentScene,
					"NARRATIVE_VISION": rs.policy,
					"USER_ACTION":      rs.in.UserAction,
				})
				if err != nil {
					return "", err
				}
				narrative, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.narrative = narrative
				rs.vision = rs.policy
				return "", nil
			},
		},
	}
}
