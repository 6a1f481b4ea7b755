package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sefran12/the-garden-of-forking-paths/internal/story"
)

// MemorySaveRepository keeps saves in process memory. It backs the
// server when no database is configured, and the tests.
type MemorySaveRepository struct {
	mu      sync.RWMutex
	records map[string]*story.SaveRecord
}

// NewMemorySaveRepository creates an in-memory save repository.
func NewMemorySaveRepository() *MemorySaveRepository {
	return &MemorySaveRepository{
		records: make(map[string]*story.SaveRecord),
	}
}

func (r *MemorySaveRepository) Create(_ context.Context, record *story.SaveRecord) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	stored := *record
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.mu.Lock()
	r.records[id] = &stored
	r.mu.Unlock()

	return id, nil
}

func (r *MemorySaveRepository) Update(_ context.Context, id string, record *story.SaveRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: id='%s'", story.ErrSaveNotFound, id)
	}

	stored := *record
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	r.records[id] = &stored
	return nil
}

func (r *MemorySaveRepository) Load(_ context.Context, id string) (*story.SaveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: id='%s'", story.ErrSaveNotFound, id)
	}
	copied := *record
	return &copied, nil
}

func (r *MemorySaveRepository) List(_ context.Context) ([]story.SaveSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]story.SaveSummary, 0, len(r.records))
	for _, record := range r.records {
		summaries = append(summaries, story.SaveSummary{
			ID:        record.ID,
			Name:      record.StoryName,
			Timestamp: record.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries, nil
}

var _ story.SaveRepository = (*MemorySaveRepository)(nil)
