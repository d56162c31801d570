package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/nba-comps/internal/models"
)

func rec(playerID int64, season string, pts, ast float64) models.PlayerSeasonRecord {
	return models.PlayerSeasonRecord{PlayerID: playerID, SeasonID: season, Points: pts, Assists: ast}
}

func TestNormalizeWithinCohort(t *testing.T) {
	records := []models.PlayerSeasonRecord{
		rec(1, "2020", 10, 1),
		rec(2, "2020", 20, 2),
		rec(3, "2020", 30, 3),
		// unrelated cohort with a much wider range
		rec(4, "1995", 0, 0),
		rec(5, "1995", 100, 50),
	}

	out := Normalize(records)
	require.Len(t, out, len(records))

	assert.Equal(t, 0.0, out[0].Values[models.StatPoints])
	assert.Equal(t, 0.5, out[1].Values[models.StatPoints])
	assert.Equal(t, 1.0, out[2].Values[models.StatPoints])
	assert.Equal(t, 1.0, out[4].Values[models.StatAssists])

	for i := range out {
		assert.Equal(t, records[i].Identity(), out[i].Identity)
	}
}

func TestNormalizeConstantStatIsZero(t *testing.T) {
	out := Normalize([]models.PlayerSeasonRecord{
		rec(1, "2016-17", 12, 4),
		rec(2, "2016-17", 18, 4),
	})

	for _, r := range out {
		assert.Equal(t, 0.0, r.Values[models.StatAssists])
		// every other untouched stat is zero across the cohort as well
		assert.Equal(t, 0.0, r.Values[models.StatBlocks])
	}
}

func TestNormalizeBoundsAttained(t *testing.T) {
	records := []models.PlayerSeasonRecord{
		rec(1, "2016-17", 3, 7),
		rec(2, "2016-17", 25, 2),
		rec(3, "2016-17", 14, 9),
		rec(4, "2017-18", 8, 1),
		rec(5, "2017-18", 31, 6),
	}
	out := Normalize(records)

	seen := map[string][2]bool{}
	for _, r := range out {
		for s := 0; s < models.NumStats; s++ {
			v := r.Values[s]
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		flags := seen[r.Identity.SeasonID]
		if r.Values[models.StatPoints] == 0 {
			flags[0] = true
		}
		if r.Values[models.StatPoints] == 1 {
			flags[1] = true
		}
		seen[r.Identity.SeasonID] = flags
	}
	for season, flags := range seen {
		assert.True(t, flags[0], "season %s has no 0", season)
		assert.True(t, flags[1], "season %s has no 1", season)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}
