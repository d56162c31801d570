// Package repository persists player-seasons and projection runs in Postgres.
package repository

import (
	"errors"
	"fmt"

	"github.com/yourusername/nba-comps/internal/database"
	"github.com/yourusername/nba-comps/internal/models"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// Repositories holds all repository implementations
type Repositories struct {
	PlayerSeason PlayerSeasonRepository
	Projection   ProjectionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		PlayerSeason: NewPostgresPlayerSeasonRepository(db),
		Projection:   NewPostgresProjectionRepository(db),
	}, nil
}

// statColumns lists the stat columns in canonical order.
var statColumns = func() []string {
	cols := make([]string, 0, models.NumStats)
	for _, s := range models.AllStats() {
		cols = append(cols, s.String())
	}
	return cols
}()
