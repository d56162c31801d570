package models

import (
	"maps"
	"slices"
	"time"
)

// NeighborContribution describes one neighbor retained by a projection.
type NeighborContribution struct {
	Identity        Identity `json:"identity"`
	PlayerName      string   `json:"player_name,omitempty"`
	Distance        float64  `json:"distance"`
	Weight          float64  `json:"weight"`
	SuccessorSeason string   `json:"successor_season"`
}

// ProjectionResult is a projected next-season stat line. It is built fresh
// for every query and never mutated after it is returned.
type ProjectionResult struct {
	PlayerID     int64                  `json:"player_id"`
	PlayerName   string                 `json:"player_name,omitempty"`
	BaseSeason   string                 `json:"base_season"`
	TargetSeason string                 `json:"target_season"`
	K            int                    `json:"k"`
	Stats        map[string]float64     `json:"stats"`
	Neighbors    []NeighborContribution `json:"neighbors"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// Value returns the projected value for a statistic.
func (p *ProjectionResult) Value(s Stat) float64 {
	return p.Stats[s.String()]
}

// Clone returns a copy that shares no maps or slices with p.
func (p *ProjectionResult) Clone() *ProjectionResult {
	if p == nil {
		return nil
	}
	c := *p
	c.Stats = maps.Clone(p.Stats)
	c.Neighbors = slices.Clone(p.Neighbors)
	return &c
}
