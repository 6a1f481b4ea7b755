package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sefran12/the-garden-of-forking-paths/internal/story"
)

func TestMemorySaveRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create then load round trip", func(t *testing.T) {
		repo := NewMemorySaveRepository()

		id, err := repo.Create(ctx, &story.SaveRecord{
			StoryName: "The Garden",
			State:     story.StoryState{Plot: "plot", CurrentScene: "S1"},
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, id)

		record, err := repo.Load(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, id, record.ID)
		assert.Equal(t, "The Garden", record.StoryName)
		assert.Equal(t, "plot", record.State.Plot)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("update replaces content but keeps creation time", func(t *testing.T) {
		repo := NewMemorySaveRepository()

		id, err := repo.Create(ctx, &story.SaveRecord{StoryName: "v1"})
		assert.NoError(t, err)
		created, _ := repo.Load(ctx, id)

		err = repo.Update(ctx, id, &story.SaveRecord{StoryName: "v2"})
		assert.NoError(t, err)

		record, err := repo.Load(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "v2", record.StoryName)
		assert.Equal(t, created.CreatedAt, record.CreatedAt)
	})

	t.Run("missing ids are reported", func(t *testing.T) {
		repo := NewMemorySaveRepository()

		_, err := repo.Load(ctx, "nope")
		assert.ErrorIs(t, err, story.ErrSaveNotFound)
		err = repo.Update(ctx, "nope", &story.SaveRecord{})
		assert.ErrorIs(t, err, story.ErrSaveNotFound)
	})

	t.Run("list is ordered by most recent update", func(t *testing.T) {
		repo := NewMemorySaveRepository()

		first, err := repo.Create(ctx, &story.SaveRecord{StoryName: "first"})
		assert.NoError(t, err)
		time.Sleep(time.Millisecond)
		second, err := repo.Create(ctx, &story.SaveRecord{StoryName: "second"})
		assert.NoError(t, err)

		saves, err := repo.List(ctx)
		assert.NoError(t, err)
		assert.Len(t, saves, 2)
		assert.Equal(t, second, saves[0].ID)
		assert.Equal(t, first, saves[1].ID)

		time.Sleep(time.Millisecond)
		assert.NoError(t, repo.Update(ctx, first, &story.SaveRecord{StoryName: "first v2"}))
		saves, err = repo.List(ctx)
		assert.NoError(t, err)
		assert.Equal(t, first, saves[0].ID)
		assert.Equal(t, "first v2", saves[0].Name)
	})

	t.Run("load returns a copy", func(t *testing.T) {
		repo := NewMemorySaveRepository()

		id, err := repo.Create(ctx, &story.SaveRecord{StoryName: "original"})
		assert.NoError(t, err)

		record, _ := repo.Load(ctx, id)
		record.StoryName = "mutated"

		again, _ := repo.Load(ctx, id)
		assert.Equal(t, "original", again.StoryName)
	})
}
