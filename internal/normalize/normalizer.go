// Package normalize rescales raw statistics to [0,1] within each season
// cohort so that seasons from different scoring eras are comparable.
package normalize

import (
	"github.com/yourusername/nba-comps/internal/models"
)

type bounds struct {
	min [models.NumStats]float64
	max [models.NumStats]float64
}

// Normalize partitions records by season and maps each statistic v to
// (v - min) / (max - min) using that season's min and max. When a season has
// a single distinct value for a statistic, every record gets 0.
//
// The output preserves input order and cardinality.
func Normalize(records []models.PlayerSeasonRecord) []models.NormalizedRecord {
	cohorts := cohortBounds(records)

	out := make([]models.NormalizedRecord, len(records))
	for i := range records {
		b := cohorts[records[i].SeasonID]
		out[i] = models.NormalizedRecord{Identity: records[i].Identity()}
		for s := 0; s < models.NumStats; s++ {
			out[i].Values[s] = scale(records[i].Value(models.Stat(s)), b.min[s], b.max[s])
		}
	}
	return out
}

func cohortBounds(records []models.PlayerSeasonRecord) map[string]*bounds {
	cohorts := make(map[string]*bounds)
	for i := range records {
		b, ok := cohorts[records[i].SeasonID]
		if !ok {
			b = &bounds{}
			for s := 0; s < models.NumStats; s++ {
				v := records[i].Value(models.Stat(s))
				b.min[s], b.max[s] = v, v
			}
			cohorts[records[i].SeasonID] = b
			continue
		}
		for s := 0; s < models.NumStats; s++ {
			v := records[i].Value(models.Stat(s))
			if v < b.min[s] {
				b.min[s] = v
			}
			if v > b.max[s] {
				b.max[s] = v
			}
		}
	}
	return cohorts
}

func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
