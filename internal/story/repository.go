package story

import (
	"context"
	"errors"
	"time"
)

// ErrSaveNotFound is returned when no save exists for an id.
var ErrSaveNotFound = errors.New("save not found")

// SaveRecord is a persisted story state together with its generated
// display metadata.
type SaveRecord struct {
	ID             string
	State          StoryState
	StoryName      string
	OverallSummary string
	LatestSummary  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaveSummary is the listing view of a save.
type SaveSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveRepository persists story saves.
type SaveRepository interface {
	Create(ctx context.Context, record *SaveRecord) (string, error)
	Update(ctx context.Context, id string, record *SaveRecord) error
	Load(ctx context.Context, id string) (*SaveRecord, error)
	List(ctx context.Context) ([]SaveSummary, error)
}
