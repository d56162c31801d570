// Package store holds the immutable snapshot of loaded player-season records.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/yourusername/nba-comps/internal/models"
)

// DefaultMinGamesPlayed is the games-played floor applied before modelling.
// Records at or below it are dropped.
const DefaultMinGamesPlayed = 10

// Source yields cleaned player-season rows from a tabular backend.
type Source interface {
	Load(ctx context.Context) ([]models.PlayerSeasonRecord, error)
	Name() string
}

// Load reads every record from src and builds a store from them.
func Load(ctx context.Context, src Source) (*Store, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records from %s: %w", src.Name(), err)
	}
	return New(records)
}

// Store is a read-only collection of player-season records indexed by
// (player_id, season_id). It is never mutated after construction.
type Store struct {
	records []models.PlayerSeasonRecord
	index   map[models.Identity]int
	seasons []string
}

// New builds a store from records, preserving their input order. Duplicate
// identities are rejected.
func New(records []models.PlayerSeasonRecord) (*Store, error) {
	s := &Store{
		records: make([]models.PlayerSeasonRecord, len(records)),
		index:   make(map[models.Identity]int, len(records)),
	}
	copy(s.records, records)

	seen := make(map[string]struct{})
	for i := range s.records {
		id := s.records[i].Identity()
		if _, ok := s.index[id]; ok {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicatePlayerSeason, id)
		}
		s.index[id] = i
		if _, ok := seen[id.SeasonID]; !ok {
			seen[id.SeasonID] = struct{}{}
			s.seasons = append(s.seasons, id.SeasonID)
		}
	}
	sort.Strings(s.seasons)

	return s, nil
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of every record in load order.
func (s *Store) Records() []models.PlayerSeasonRecord {
	out := make([]models.PlayerSeasonRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Each calls fn for every record in load order without copying the slice.
// fn must not retain the pointer.
func (s *Store) Each(fn func(*models.PlayerSeasonRecord)) {
	for i := range s.records {
		fn(&s.records[i])
	}
}

// FindByIdentity returns the record for a player-season, if present.
func (s *Store) FindByIdentity(playerID int64, seasonID string) (models.PlayerSeasonRecord, bool) {
	i, ok := s.index[models.Identity{PlayerID: playerID, SeasonID: seasonID}]
	if !ok {
		return models.PlayerSeasonRecord{}, false
	}
	return s.records[i], true
}

// Seasons returns the distinct season identifiers present, sorted
// lexicographically.
func (s *Store) Seasons() []string {
	out := make([]string, len(s.seasons))
	copy(out, s.seasons)
	return out
}

// Cohort returns the records belonging to one season in load order.
func (s *Store) Cohort(seasonID string) []models.PlayerSeasonRecord {
	var out []models.PlayerSeasonRecord
	for i := range s.records {
		if s.records[i].SeasonID == seasonID {
			out = append(out, s.records[i])
		}
	}
	return out
}

// FilterByMinGamesPlayed returns a new store without records whose games
// played is at or below threshold. The receiver is left untouched.
func (s *Store) FilterByMinGamesPlayed(threshold int) *Store {
	kept := make([]models.PlayerSeasonRecord, 0, len(s.records))
	for i := range s.records {
		if s.records[i].GamesPlayed > threshold {
			kept = append(kept, s.records[i])
		}
	}
	// identities were already unique in s
	filtered, _ := New(kept)
	return filtered
}
