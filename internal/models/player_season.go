package models

import "fmt"

// Identity is the unique key of a player-season.
type Identity struct {
	PlayerID int64  `json:"player_id"`
	SeasonID string `json:"season_id"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%d/%s", id.PlayerID, id.SeasonID)
}

// PlayerSeasonRecord holds one player's raw statistics for one season.
type PlayerSeasonRecord struct {
	PlayerID    int64  `json:"player_id"`
	SeasonID    string `json:"season_id"`
	PlayerName  string `json:"player_name,omitempty"`
	GamesPlayed int    `json:"gp"`

	Points              float64 `json:"pts"`
	Minutes             float64 `json:"min"`
	FieldGoalsMade      float64 `json:"fgm"`
	FieldGoalsAttempted float64 `json:"fga"`
	ThreesMade          float64 `json:"fg3m"`
	ThreesAttempted     float64 `json:"fg3a"`
	FreeThrowsMade      float64 `json:"ftm"`
	FreeThrowsAttempted float64 `json:"fta"`
	OffensiveRebounds   float64 `json:"oreb"`
	DefensiveRebounds   float64 `json:"dreb"`
	Assists             float64 `json:"ast"`
	Steals              float64 `json:"stl"`
	Turnovers           float64 `json:"tov"`
	Blocks              float64 `json:"blk"`
}

// Identity returns the (player, season) key of the record.
func (r *PlayerSeasonRecord) Identity() Identity {
	return Identity{PlayerID: r.PlayerID, SeasonID: r.SeasonID}
}

// Value returns the raw value of a tracked statistic.
func (r *PlayerSeasonRecord) Value(s Stat) float64 {
	switch s {
	case StatPoints:
		return r.Points
	case StatMinutes:
		return r.Minutes
	case StatFieldGoalsMade:
		return r.FieldGoalsMade
	case StatFieldGoalsAttempted:
		return r.FieldGoalsAttempted
	case StatThreesMade:
		return r.ThreesMade
	case StatThreesAttempted:
		return r.ThreesAttempted
	case StatFreeThrowsMade:
		return r.FreeThrowsMade
	case StatFreeThrowsAttempted:
		return r.FreeThrowsAttempted
	case StatOffensiveRebounds:
		return r.OffensiveRebounds
	case StatDefensiveRebounds:
		return r.DefensiveRebounds
	case StatAssists:
		return r.Assists
	case StatSteals:
		return r.Steals
	case StatTurnovers:
		return r.Turnovers
	case StatBlocks:
		return r.Blocks
	default:
		panic(fmt.Sprintf("models: unknown stat %d", int(s)))
	}
}

// SetValue assigns the raw value of a tracked statistic.
func (r *PlayerSeasonRecord) SetValue(s Stat, v float64) {
	switch s {
	case StatPoints:
		r.Points = v
	case StatMinutes:
		r.Minutes = v
	case StatFieldGoalsMade:
		r.FieldGoalsMade = v
	case StatFieldGoalsAttempted:
		r.FieldGoalsAttempted = v
	case StatThreesMade:
		r.ThreesMade = v
	case StatThreesAttempted:
		r.ThreesAttempted = v
	case StatFreeThrowsMade:
		r.FreeThrowsMade = v
	case StatFreeThrowsAttempted:
		r.FreeThrowsAttempted = v
	case StatOffensiveRebounds:
		r.OffensiveRebounds = v
	case StatDefensiveRebounds:
		r.DefensiveRebounds = v
	case StatAssists:
		r.Assists = v
	case StatSteals:
		r.Steals = v
	case StatTurnovers:
		r.Turnovers = v
	case StatBlocks:
		r.Blocks = v
	default:
		panic(fmt.Sprintf("models: unknown stat %d", int(s)))
	}
}

// NormalizedRecord carries per-season min/max scaled values in [0,1],
// indexed by Stat.
type NormalizedRecord struct {
	Identity Identity
	Values   [NumStats]float64
}

// StatVector is an ordered numeric sequence used for distance computation.
// Two vectors are comparable only when built from the same Order.
type StatVector struct {
	Order  []Stat
	Values []float64
}

// Len returns the vector dimensionality.
func (v StatVector) Len() int {
	return len(v.Values)
}

// SameOrder reports whether both vectors were built from the same statistic
// ordering.
func (v StatVector) SameOrder(o StatVector) bool {
	if len(v.Order) != len(o.Order) || len(v.Values) != len(o.Values) {
		return false
	}
	for i := range v.Order {
		if v.Order[i] != o.Order[i] {
			return false
		}
	}
	return true
}

// NeighborResult pairs a candidate player-season with its distance from a
// query. Smaller is more similar.
type NeighborResult struct {
	Identity Identity `json:"identity"`
	Distance float64  `json:"distance"`
}
