package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/story"
)

const (
	createSavesTableQuery = `
		CREATE TABLE IF NOT EXISTS story_saves (
			id UUID PRIMARY KEY,
			state JSONB NOT NULL,
			story_name TEXT NOT NULL,
			overall_summary TEXT NOT NULL,
			latest_summary TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	insertSaveQuery = `
		INSERT INTO story_saves (
			id, state, story_name, overall_summary, latest_summary,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	updateSaveQuery = `
		UPDATE story_saves SET
			state = $2,
			story_name = $3,
			overall_summary = $4,
			latest_summary = $5,
			updated_at = $6
		WHERE id = $1
	`
	getSaveByIDQuery = `
		SELECT
			id, state, story_name, overall_summary, latest_summary,
			created_at, updated_at
		FROM story_saves
		WHERE id = $1
	`
	listSavesQuery = `
		SELECT id, story_name, updated_at
		FROM story_saves
		ORDER BY updated_at DESC
	`
)

// PgSaveRepository persists story saves in PostgreSQL, with the full
// state snapshot stored as JSONB.
type PgSaveRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgSaveRepository creates a PostgreSQL-backed save repository.
func NewPgSaveRepository(pool *pgxpool.Pool, logger *zap.Logger) *PgSaveRepository {
	return &PgSaveRepository{
		pool:   pool,
		logger: logger.Named("PgSaveRepo"),
	}
}

// InitSchema creates the saves table when it does not exist yet.
func (r *PgSaveRepository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createSavesTableQuery); err != nil {
		r.logger.Error("Failed to initialize saves schema", zap.Error(err))
		return fmt.Errorf("error initializing saves schema: %w", err)
	}
	return nil
}

func (r *PgSaveRepository) Create(ctx context.Context, record *story.SaveRecord) (string, error) {
	stateJSON, err := json.Marshal(record.State)
	if err != nil {
		return "", fmt.Errorf("error marshalling story state: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()
	_, err = r.pool.Exec(ctx, insertSaveQuery,
		id,
		stateJSON,
		record.StoryName,
		record.OverallSummary,
		record.LatestSummary,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create save", zap.Error(err))
		return "", fmt.Errorf("error creating save: %w", err)
	}

	r.logger.Debug("Save created", zap.String("save_id", id))
	return id, nil
}

func (r *PgSaveRepository) Update(ctx context.Context, id string, record *story.SaveRecord) error {
	stateJSON, err := json.Marshal(record.State)
	if err != nil {
		return fmt.Errorf("error marshalling story state: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateSaveQuery,
		id,
		stateJSON,
		record.StoryName,
		record.OverallSummary,
		record.LatestSummary,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update save", zap.String("save_id", id), zap.Error(err))
		return fmt.Errorf("error updating save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id='%s'", story.ErrSaveNotFound, id)
	}

	r.logger.Debug("Save updated", zap.String("save_id", id))
	return nil
}

func (r *PgSaveRepository) Load(ctx context.Context, id string) (*story.SaveRecord, error) {
	var (
		record    story.SaveRecord
		stateJSON []byte
	)
	err := r.pool.QueryRow(ctx, getSaveByIDQuery, id).Scan(
		&record.ID,
		&stateJSON,
		&record.StoryName,
		&record.OverallSummary,
		&record.LatestSummary,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id='%s'", story.ErrSaveNotFound, id)
		}
		r.logger.Error("Failed to load save", zap.String("save_id", id), zap.Error(err))
		return nil, fmt.Errorf("error loading save: %w", err)
	}

	if err := json.Unmarshal(stateJSON, &record.State); err != nil {
		return nil, fmt.Errorf("error unmarshalling story state: %w", err)
	}
	return &record, nil
}

func (r *PgSaveRepository) List(ctx context.Context) ([]story.SaveSummary, error) {
	rows, err := r.pool.Query(ctx, listSavesQuery)
	if err != nil {
		r.logger.Error("Failed to list saves", zap.Error(err))
		return nil, fmt.Errorf("error listing saves: %w", err)
	}
	defer rows.Close()

	var summaries []story.SaveSummary
	for rows.Next() {
		var s story.SaveSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning save summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating save summaries: %w", err)
	}
	return summaries, nil
}

var _ story.SaveRepository = (*PgSaveRepository)(nil)
