package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func transcript(contents ...string) []Message {
	messages := []Message{{Role: "assistant", Content: WelcomeMessage}}
	for i, c := range contents {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: c})
	}
	return messages
}

func TestExtractPairs(t *testing.T) {
	t.Run("skips the welcome message", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript("A1", "S1", "A2", "S2"), 10)
		assert.Equal(t, []string{"A1", "A2"}, actions)
		assert.Equal(t, []string{"S1", "S2"}, scenes)
	})

	t.Run("keeps only the most recent pairs", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript("A1", "S1", "A2", "S2", "A3", "S3"), 2)
		assert.Equal(t, []string{"A2", "A3"}, actions)
		assert.Equal(t, []string{"S2", "S3"}, scenes)
	})

	t.Run("drops a trailing unpaired action", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript("A1", "S1", "A2", "S2", "A3"), 1)
		assert.Equal(t, []string{"A2"}, actions)
		assert.Equal(t, []string{"S2"}, scenes)
	})

	t.Run("negative limit keeps everything", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript("A1", "S1", "A2", "S2", "A3", "S3"), -1)
		assert.Len(t, actions, 3)
		assert.Len(t, scenes, 3)
	})

	t.Run("welcome-only transcript has no pairs", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript(), 5)
		assert.Empty(t, actions)
		assert.Empty(t, scenes)
	})

	t.Run("zero limit yields no pairs", func(t *testing.T) {
		actions, scenes := ExtractPairs(transcript("A1", "S1"), 0)
		assert.Empty(t, actions)
		assert.Empty(t, scenes)
	})
}

func TestInterleavePairs(t *testing.T) {
	assert.Equal(t,
		[]string{"A1", "S1", "A2", "S2"},
		InterleavePairs([]string{"A1", "A2"}, []string{"S1", "S2"}))
	assert.Empty(t, InterleavePairs(nil, nil))
}
