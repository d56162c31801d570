package models

import (
	"fmt"
	"strings"
)

// Stat identifies one tracked box-score statistic.
type Stat int

// Tracked statistics, in the canonical vector order.
const (
	StatPoints Stat = iota
	StatMinutes
	StatFieldGoalsMade
	StatFieldGoalsAttempted
	StatThreesMade
	StatThreesAttempted
	StatFreeThrowsMade
	StatFreeThrowsAttempted
	StatOffensiveRebounds
	StatDefensiveRebounds
	StatAssists
	StatSteals
	StatTurnovers
	StatBlocks

	// NumStats is the number of tracked statistics.
	NumStats int = iota
)

var statNames = [NumStats]string{
	"pts", "min", "fgm", "fga", "fg3m", "fg3a", "ftm", "fta",
	"oreb", "dreb", "ast", "stl", "tov", "blk",
}

// AllStats returns every tracked statistic in canonical order.
func AllStats() []Stat {
	stats := make([]Stat, NumStats)
	for i := range stats {
		stats[i] = Stat(i)
	}
	return stats
}

// String returns the column name used for the statistic in source tables.
func (s Stat) String() string {
	if s < 0 || int(s) >= NumStats {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// Valid reports whether s is a tracked statistic.
func (s Stat) Valid() bool {
	return s >= 0 && int(s) < NumStats
}

// ParseStat resolves a column name such as "pts" or "FG3M" to a Stat.
func ParseStat(name string) (Stat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown statistic %q", name)
}
