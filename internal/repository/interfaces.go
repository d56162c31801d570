package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/projection"
)

// PlayerSeasonRepository defines the interface for player-season data access
type PlayerSeasonRepository interface {
	ListPlayerSeasons(ctx context.Context) ([]models.PlayerSeasonRecord, error)
	UpsertBatch(ctx context.Context, records []models.PlayerSeasonRecord) (int, error)
}

// ProjectionRepository defines the interface for persisted projection runs
type ProjectionRepository interface {
	SaveBatch(ctx context.Context, batch *projection.BatchResult) error
	LatestRun(ctx context.Context, seasonID string) (uuid.UUID, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.ProjectionResult, error)
}
