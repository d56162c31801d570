package datasource

import (
	"context"
	"fmt"

	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
)

// PlayerSeasonLister lists every stored player-season.
type PlayerSeasonLister interface {
	ListPlayerSeasons(ctx context.Context) ([]models.PlayerSeasonRecord, error)
}

// PostgresSource reads records through a repository.
type PostgresSource struct {
	repo PlayerSeasonLister
}

// NewPostgresSource creates a source backed by repo.
func NewPostgresSource(repo PlayerSeasonLister) *PostgresSource {
	return &PostgresSource{repo: repo}
}

// Name returns the name of the data source
func (s *PostgresSource) Name() string {
	return PostgresSourceName
}

// Load lists all player-seasons.
func (s *PostgresSource) Load(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	records, err := s.repo.ListPlayerSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list player seasons: %w", err)
	}
	metrics.RecordLoad(PostgresSourceName, len(records), 0, 0)
	return records, nil
}
