package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/prompts"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Complete(ctx context.Context, prompt string, params llm.Params) (string, llm.Usage, error) {
	args := m.Called(ctx, prompt, params)
	return args.String(0), llm.Usage{}, args.Error(1)
}

var _ llm.Client = (*mockClient)(nil)

type blockingClient struct{}

func (blockingClient) Complete(ctx context.Context, prompt string, params llm.Params) (string, llm.Usage, error) {
	<-ctx.Done()
	return "", llm.Usage{}, ctx.Err()
}

func newTestWorkflow(t *testing.T, typ Type, client llm.Client) *Workflow {
	t.Helper()
	return &Workflow{
		typ:        typ,
		client:     client,
		prompts:    prompts.NewProvider("", zap.NewNop()),
		logger:     zap.NewNop(),
		timeout:    5 * time.Second,
		attempts:   defaultAttempts,
		retryDelay: time.Millisecond,
	}
}

func fullInput() Input {
	return Input{
		Plot:         "A lighthouse keeper guards a sleeping sea god.",
		CurrentScene: "The lamp gutters as the tide pulls back unnaturally far.",
		UserAction:   "I climb down to the exposed seabed.",
		SceneHistory: []string{"I light the lamp.", "The lamp holds against the first storm."},
	}
}

func TestPlanAdaptWorkflow(t *testing.T) {
	t.Run("success passes planner vision to adapter", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypePlanAdapt, client)
		in := fullInput()

		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool { return strings.Contains(p, in.Plot) }),
			mock.Anything).Return("the sea god stirs", nil).Once()
		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "the sea god stirs") && strings.Contains(p, in.UserAction)
			}),
			mock.Anything).Return("You walk among stranded fish.", nil).Once()

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.False(t, out.SoftFailed())
		assert.Equal(t, "You walk among stranded fish.", out.Narrative)
		assert.Equal(t, "the sea god stirs", out.Vision)
		client.AssertExpectations(t)
	})

	t.Run("missing plot is a soft outcome before any model call", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypePlanAdapt, client)
		in := fullInput()
		in.Plot = ""

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.True(t, out.SoftFailed())
		assert.Equal(t, "Missing required story elements.", out.Soft)
		client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing action stops after the planner", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypePlanAdapt, client)
		in := fullInput()
		in.UserAction = ""

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("vision", nil).Once()

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Missing user action.", out.Soft)
		client.AssertExpectations(t)
	})
}

func TestWorkflowRetries(t *testing.T) {
	t.Run("transient failure succeeds on a later attempt", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypePlanAdapt, client)

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("connection reset")).Twice()
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("vision", nil).Once()
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("narrative", nil).Once()

		out, err := w.Run(context.Background(), fullInput())
		assert.NoError(t, err)
		assert.Equal(t, "narrative", out.Narrative)
		client.AssertExpectations(t)
	})

	t.Run("attempts are exhausted after three failures", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypePlanAdapt, client)

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("connection reset")).Times(3)

		out, err := w.Run(context.Background(), fullInput())
		assert.Nil(t, out)
		assert.ErrorContains(t, err, "failed after 3 attempts")
		client.AssertExpectations(t)
		client.AssertNumberOfCalls(t, "Complete", 3)
	})
}

func TestWorkflowTimeout(t *testing.T) {
	w := newTestWorkflow(t, TypePlanAdapt, blockingClient{})
	w.timeout = 20 * time.Millisecond

	out, err := w.Run(context.Background(), fullInput())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrRunTimeout)
}

func TestActorCriticWorkflow(t *testing.T) {
	client := &mockClient{}
	w := newTestWorkflow(t, TypeActorCritic, client)
	in := fullInput()

	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return strings.Contains(p, in.Plot) }),
		mock.Anything).Return("keep the sea god asleep", nil).Once()
	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return strings.Contains(p, in.UserAction) }),
		mock.Anything).
		Return("Action Analysis:\nA reckless descent.\nResponse:\nThe seabed mud swallows your boots.", nil).Once()

	out, err := w.Run(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, "The seabed mud swallows your boots.", out.Narrative)
	assert.Equal(t, "ACTOR:\nkeep the sea god asleep\n\nCRITIC:\nA reckless descent.", out.Vision)
	client.AssertExpectations(t)
}

func TestDimensionalWorkflow(t *testing.T) {
	t.Run("actor never sees the raw action", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeDimensionalCritic, client)
		in := fullInput()

		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool { return strings.Contains(p, in.UserAction) }),
			mock.Anything).Return("the descent strains the pact", nil).Once()
		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool {
				return !strings.Contains(p, in.UserAction) && strings.Contains(p, "the descent strains the pact")
			}),
			mock.Anything).Return("Mud pulls at every step.", nil).Once()

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Mud pulls at every step.", out.Narrative)
		assert.Equal(t, "the descent strains the pact", out.Vision)
		client.AssertExpectations(t)
	})

	t.Run("missing action gates the whole run", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeDimensionalCritic, client)
		in := fullInput()
		in.UserAction = ""

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Missing required story elements.", out.Soft)
		client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSelectiveWorkflow(t *testing.T) {
	client := &mockClient{}
	w := newTestWorkflow(t, TypeSelectiveCritic, client)
	in := fullInput()

	criticReply := "ANALYSIS: stakes rise.\nSELECTED ACTOR: CONFLICT\nREASONING: direct danger."
	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return strings.Contains(p, in.UserAction) }),
		mock.Anything).Return(criticReply, nil).Once()
	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return strings.Contains(p, actorFocus["CONFLICT"]) }),
		mock.Anything).Return("press the physical stakes", nil).Once()
	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return strings.Contains(p, "press the physical stakes") }),
		mock.Anything).Return("The seabed shudders underfoot.", nil).Once()

	out, err := w.Run(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, "The seabed shudders underfoot.", out.Narrative)
	assert.Equal(t,
		"\nCRITIC ANALYSIS:\n"+criticReply+"\n\nCONFLICT ACTOR POLICY:\npress the physical stakes\n",
		out.Vision)
	client.AssertExpectations(t)
}

func TestOptimizingWorkflow(t *testing.T) {
	client := &mockClient{}
	w := newTestWorkflow(t, TypeOptimizingCritic, client)
	in := fullInput()

	client.On("Complete", mock.Anything, mock.Anything,
		mock.MatchedBy(func(p llm.Params) bool { return p.MaxTokens == nil })).
		Return("trajectory holds, pacing slow", nil).Once()
	// The actor call carries the raised token limit and no raw action.
	client.On("Complete", mock.Anything,
		mock.MatchedBy(func(p string) bool { return !strings.Contains(p, in.UserAction) }),
		mock.MatchedBy(func(p llm.Params) bool { return p.MaxTokens != nil && *p.MaxTokens == 4096 })).
		Return("A long scene unfolds.", nil).Once()

	out, err := w.Run(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, "A long scene unfolds.", out.Narrative)
	assert.Equal(t, "trajectory holds, pacing slow", out.Vision)
	client.AssertExpectations(t)
}

func TestTimescaleWorkflow(t *testing.T) {
	t.Run("merges policies before the critic", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeTimescaleCritic, client)
		in := fullInput()

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("long: wake the god slowly", nil).Once()
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("short: danger on the seabed", nil).Once()
		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "long: wake the god slowly") &&
					strings.Contains(p, "short: danger on the seabed")
			}),
			mock.Anything).Return("merged pacing", nil).Once()
		client.On("Complete", mock.Anything,
			mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "merged pacing") && strings.Contains(p, in.UserAction)
			}),
			mock.Anything).
			Return("Action Analysis:\nBold but costly.\nResponse:\nThe water returns early.", nil).Once()

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "The water returns early.", out.Narrative)
		assert.Equal(t, "MERGED POLICY:\nmerged pacing\n\nCRITIC ANALYSIS:\nBold but costly.", out.Vision)
		client.AssertExpectations(t)
	})

	t.Run("missing plot stops before any model call", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeTimescaleCritic, client)
		in := fullInput()
		in.Plot = ""

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Missing plot information.", out.Soft)
		client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing scene stops after the long-term actor", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeTimescaleCritic, client)
		in := fullInput()
		in.CurrentScene = ""

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("long-term policy", nil).Once()

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Missing current scene.", out.Soft)
		client.AssertExpectations(t)
	})

	t.Run("missing action stops after the merge", func(t *testing.T) {
		client := &mockClient{}
		w := newTestWorkflow(t, TypeTimescaleCritic, client)
		in := fullInput()
		in.UserAction = ""

		client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("a policy", nil).Times(3)

		out, err := w.Run(context.Background(), in)
		assert.NoError(t, err)
		assert.Equal(t, "Missing user action.", out.Soft)
		client.AssertExpectations(t)
	})
}
