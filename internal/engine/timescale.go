package engine

import (
	"context"
	"fmt"
)

// timescaleStages: separate actors draft long-term and short-term
// policies, a pacing stage merges them, and a critic evaluates the
// user's action against the merged policy to write the scene.
func (w *Workflow) timescaleStages() []stage {
	return []stage{
		{
			name:      "long_term_actor",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.Plot == "" {
					return softMissingPlot, nil
				}
				prompt, err := w.prompts.Render("timescale/long_term", map[string]string{
					"PLOT":    rs.in.Plot,
					"HISTORY": rs.history,
				})
				if err != nil {
					return "", err
				}
				policy, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.longTerm = policy
				return "", nil
			},
		},
		{
			name:      "short_term_actor",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.in.CurrentScene == "" {
					return softMissingScene, nil
				}
				prompt, err := w.prompts.Render("timescale/short_term", map[string]string{
					"PLOT":             rs.in.Plot,
					"HISTORY":          rs.history,
					"CURRENT_SCENE":    rs.in.CurrentScene,
					"LONG_TERM_POLICY": rs.longTerm,
				})
				if err != nil {
					return "", err
				}
				policy, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.shortTerm = policy
				return "", nil
			},
		},
		{
			name:      "pacing",
			retryable: true,
			execute: func(ctx context.Context, rs *runState) (string, error) {
				if rs.longTerm == "" || rs.shortTerm == "" {
					return softMissingPolicies, nil
				}
				prompt, err := w.prompts.Render("timescale/merge", map[string]string{
					"LONG_TERM_POLICY":  rs.longTerm,
					"SHORT_TERM_POLICY": rs.shortTerm,
				})
				if err != nil {
					return "", err
				}
				merged, err := w.complete(ctx, prompt, 0)
				if err != nil {
					return "", err
				}
				rs.merged = merged
				return "", nil
			},
		},
		{
			name: "process_user_action",
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
				prompt, err := w.prompts.Render("timescale/critic", map[string]string{
					"PLOT":          rs.in.Plot,
					"HISTORY":       rs.history,
					"USER_ACTION":   rs.in.UserAction,
					"MERGED_POLICY": rs.merged,
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
				rs.vision = fmt.Sprintf("MERGED POLICY:\n%s\n\nCRITIC ANALYSIS:\n%s", rs.merged, analysis)
				return "", nil
			},
		},
	}
}
