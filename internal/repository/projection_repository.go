package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/nba-comps/internal/database"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/projection"
)

// PostgresProjectionRepository implements ProjectionRepository for PostgreSQL
type PostgresProjectionRepository struct {
	db *database.DB
}

// NewPostgresProjectionRepository creates a new projection repository
func NewPostgresProjectionRepository(db *database.DB) *PostgresProjectionRepository {
	return &PostgresProjectionRepository{db: db}
}

func projectionColumns() []string {
	cols := []string{"run_id", "player_id", "player_name", "base_season", "target_season", "k", "neighbors"}
	cols = append(cols, statColumns...)
	return append(cols, "generated_at")
}

func projectionRow(runID uuid.UUID, p *models.ProjectionResult) []any {
	var name *string
	if p.PlayerName != "" {
		name = &p.PlayerName
	}
	row := []any{runID, p.PlayerID, name, p.BaseSeason, p.TargetSeason, p.K, len(p.Neighbors)}
	for _, s := range models.AllStats() {
		row = append(row, p.Value(s))
	}
	return append(row, p.GeneratedAt)
}

// SaveBatch stores a run header and its projections in one transaction,
// bulk loading the projections with COPY.
func (r *PostgresProjectionRepository) SaveBatch(ctx context.Context, batch *projection.BatchResult) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO projection_runs (run_id, base_season, k, projected, failed, started_at, duration_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, batch.RunID, batch.Season, batch.K, len(batch.Projections), len(batch.Failures),
			batch.StartedAt, batch.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to insert projection run: %w", err)
		}

		if len(batch.Projections) == 0 {
			return nil
		}

		rows := make([][]any, len(batch.Projections))
		for i, p := range batch.Projections {
			rows[i] = projectionRow(batch.RunID, p)
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"player_projections"}, projectionColumns(), pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy projections: %w", err)
		}
		if count != int64(len(rows)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(rows))
		}
		return nil
	})
}

// LatestRun returns the most recent run for a base season
func (r *PostgresProjectionRepository) LatestRun(ctx context.Context, seasonID string) (uuid.UUID, error) {
	var runID uuid.UUID
	err := r.db.GetPool().QueryRow(ctx, `
		SELECT run_id FROM projection_runs
		WHERE base_season = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, seasonID).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID, nil
}

// ListByRun returns the projections stored for a run. Neighbor details are
// not persisted.
func (r *PostgresProjectionRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.ProjectionResult, error) {
	query := `
		SELECT player_id, player_name, base_season, target_season, k, ` + strings.Join(statColumns, ", ") + `, generated_at
		FROM player_projections
		WHERE run_id = $1
		ORDER BY player_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	var results []*models.ProjectionResult
	for rows.Next() {
		var (
			p     models.ProjectionResult
			name  *string
			stats [models.NumStats]float64
		)
		targets := []any{&p.PlayerID, &name, &p.BaseSeason, &p.TargetSeason, &p.K}
		for i := range stats {
			targets = append(targets, &stats[i])
		}
		targets = append(targets, &p.GeneratedAt)

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}
		if name != nil {
			p.PlayerName = *name
		}
		p.Stats = make(map[string]float64, models.NumStats)
		for _, s := range models.AllStats() {
			p.Stats[s.String()] = stats[s]
		}
		results = append(results, &p)
	}

	return results, rows.Err()
}
