package store

import (
	"gonum.org/v1/gonum/stat"
)

// GamesPlayedStats summarises the games-played distribution. The three-sigma
// floor is informational; FilterByMinGamesPlayed applies a fixed threshold.
type GamesPlayedStats struct {
	Count           int     `json:"count"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	ThreeSigmaFloor float64 `json:"three_sigma_floor"`
}

// GamesPlayedStats computes mean and sample standard deviation of games
// played across every record.
func (s *Store) GamesPlayedStats() GamesPlayedStats {
	if len(s.records) == 0 {
		return GamesPlayedStats{}
	}

	gp := make([]float64, len(s.records))
	for i := range s.records {
		gp[i] = float64(s.records[i].GamesPlayed)
	}

	mean, std := stat.MeanStdDev(gp, nil)
	if len(gp) < 2 {
		std = 0
	}

	return GamesPlayedStats{
		Count:           len(gp),
		Mean:            mean,
		StdDev:          std,
		ThreeSigmaFloor: mean - 3*std,
	}
}

// CohortSizes returns the number of records per season.
func (s *Store) CohortSizes() map[string]int {
	sizes := make(map[string]int, len(s.seasons))
	for i := range s.records {
		sizes[s.records[i].SeasonID]++
	}
	return sizes
}
