package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/store"
)

// line builds a record whose non-points stats are identical across every
// fixture, so only points separate players after normalization.
func line(playerID int64, seasonID string, pts float64) models.PlayerSeasonRecord {
	return models.PlayerSeasonRecord{
		PlayerID:            playerID,
		SeasonID:            seasonID,
		GamesPlayed:         70,
		Points:              pts,
		Minutes:             30,
		FieldGoalsMade:      6,
		FieldGoalsAttempted: 13,
		Assists:             4,
		Blocks:              1,
	}
}

func newStore(t *testing.T, records ...models.PlayerSeasonRecord) *store.Store {
	t.Helper()
	st, err := store.New(records)
	require.NoError(t, err)
	return st
}

func newProjector(t *testing.T, st *store.Store, mutate func(*Options)) *Projector {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	p, err := New(st, opts, logger.Discard())
	require.NoError(t, err)
	return p
}

// weightedFixture: in 2019-20 the query (1) sits at 0.5 on normalized
// points, player 2 at 0.6 and player 3 at 0.3. Players 2 and 3 score 20 and
// 10 the following season. The query has no 2020-21 record.
func weightedFixture(t *testing.T) *store.Store {
	named := line(2, "2019-20", 60)
	named.PlayerName = "Neighbor Two"
	return newStore(t,
		line(1, "2019-20", 50),
		named,
		line(3, "2019-20", 30),
		line(4, "2019-20", 0),
		line(5, "2019-20", 100),
		line(2, "2020-21", 20),
		line(3, "2020-21", 10),
	)
}

func TestProjectWeightsByInverseDistance(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)

	result, err := p.Project(context.Background(), 1, "2019-20", 2)
	require.NoError(t, err)

	assert.Equal(t, "2020-21", result.TargetSeason)
	assert.Equal(t, 2, result.K)
	require.Len(t, result.Neighbors, 2)

	assert.Equal(t, models.Identity{PlayerID: 2, SeasonID: "2019-20"}, result.Neighbors[0].Identity)
	assert.Equal(t, "Neighbor Two", result.Neighbors[0].PlayerName)
	assert.InDelta(t, 0.1, result.Neighbors[0].Distance, 1e-9)
	assert.InDelta(t, 10.0, result.Neighbors[0].Weight, 1e-6)
	assert.Equal(t, "2020-21", result.Neighbors[0].SuccessorSeason)

	assert.Equal(t, models.Identity{PlayerID: 3, SeasonID: "2019-20"}, result.Neighbors[1].Identity)
	assert.InDelta(t, 0.2, result.Neighbors[1].Distance, 1e-9)
	assert.InDelta(t, 5.0, result.Neighbors[1].Weight, 1e-6)

	assert.InDelta(t, 50.0/3.0, result.Value(models.StatPoints), 1e-6)
	// identical across neighbors, so the weighted mean returns it unchanged
	assert.InDelta(t, 30.0, result.Value(models.StatMinutes), 1e-9)
	assert.Len(t, result.Stats, models.NumStats)
}

func TestProjectSingleNeighborReturnsItsNextSeason(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)

	result, err := p.Project(context.Background(), 1, "2019-20", 1)
	require.NoError(t, err)

	next, ok := p.Store().FindByIdentity(2, "2020-21")
	require.True(t, ok)
	for _, s := range models.AllStats() {
		assert.Equal(t, next.Value(s), result.Value(s), "stat %s", s)
	}
}

func TestProjectUsesDefaultK(t *testing.T) {
	p := newProjector(t, weightedFixture(t), func(o *Options) { o.K = 2 })

	result, err := p.Project(context.Background(), 1, "2019-20", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.K)
}

func TestProjectSkipsNeighborsWithoutSuccessor(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)

	// every other player-season is a candidate; only players 2 and 3 have
	// a following season on record
	result, err := p.Project(context.Background(), 1, "2019-20", 10)
	require.NoError(t, err)
	require.Len(t, result.Neighbors, 2)
	assert.Equal(t, int64(2), result.Neighbors[0].Identity.PlayerID)
	assert.Equal(t, int64(3), result.Neighbors[1].Identity.PlayerID)
}

func TestProjectNotFound(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)

	_, err := p.Project(context.Background(), 99, "2019-20", 2)
	assert.ErrorIs(t, err, models.ErrPlayerSeasonNotFound)

	_, err = p.Project(context.Background(), 1, "2020-21", 2)
	assert.ErrorIs(t, err, models.ErrPlayerSeasonNotFound)
}

func TestProjectInsufficientNeighbors(t *testing.T) {
	st := newStore(t,
		line(1, "2019-20", 10),
		line(2, "2019-20", 20),
	)
	p := newProjector(t, st, nil)

	_, err := p.Project(context.Background(), 1, "2019-20", 5)
	assert.ErrorIs(t, err, models.ErrInsufficientNeighbors)
}

func TestProjectLatestSeasonWithoutHorizon(t *testing.T) {
	p := newProjector(t, weightedFixture(t), func(o *Options) { o.ExtendHorizon = false })

	_, err := p.Project(context.Background(), 2, "2020-21", 2)
	assert.ErrorIs(t, err, models.ErrNoSuccessorSeason)

	_, err = p.Project(context.Background(), 1, "2019-20", 2)
	assert.NoError(t, err)
}

func TestProjectLatestSeasonWithHorizon(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)

	result, err := p.Project(context.Background(), 2, "2020-21", 3)
	require.NoError(t, err)
	assert.Equal(t, "2021-22", result.TargetSeason)
	for _, n := range result.Neighbors {
		assert.Equal(t, "2019-20", n.Identity.SeasonID)
	}
}

func TestProjectFloorsZeroDistance(t *testing.T) {
	st := newStore(t,
		line(1, "2019-20", 20),
		line(2, "2019-20", 20),
		line(3, "2019-20", 30),
		line(4, "2019-20", 10),
		line(2, "2020-21", 12),
		line(3, "2020-21", 40),
	)
	p := newProjector(t, st, nil)

	// player 2 duplicates the query's line; player 3 follows at distance 0.5
	result, err := p.Project(context.Background(), 1, "2019-20", 2)
	require.NoError(t, err)
	require.Len(t, result.Neighbors, 2)

	assert.Equal(t, 0.0, result.Neighbors[0].Distance)
	assert.InDelta(t, 1/DefaultEpsilon, result.Neighbors[0].Weight, 1e-3)
	assert.InDelta(t, 12.0, result.Value(models.StatPoints), 1e-4)
}

func TestProjectStatWeights(t *testing.T) {
	st := newStore(t,
		models.PlayerSeasonRecord{PlayerID: 1, SeasonID: "2019-20", Points: 50, Assists: 5},
		models.PlayerSeasonRecord{PlayerID: 2, SeasonID: "2019-20", Points: 50, Assists: 10},
		models.PlayerSeasonRecord{PlayerID: 3, SeasonID: "2019-20", Points: 100, Assists: 5},
		models.PlayerSeasonRecord{PlayerID: 4, SeasonID: "2019-20", Points: 0, Assists: 0},
		models.PlayerSeasonRecord{PlayerID: 2, SeasonID: "2020-21", Points: 2},
		models.PlayerSeasonRecord{PlayerID: 3, SeasonID: "2020-21", Points: 3},
	)

	// player 2 matches on points, player 3 on assists
	byPoints := newProjector(t, st, func(o *Options) {
		o.StatWeights = map[models.Stat]float64{models.StatAssists: 0}
	})
	result, err := byPoints.Project(context.Background(), 1, "2019-20", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Neighbors[0].Identity.PlayerID)

	byAssists := newProjector(t, st, func(o *Options) {
		o.StatWeights = map[models.Stat]float64{models.StatPoints: 0}
	})
	result, err = byAssists.Project(context.Background(), 1, "2019-20", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Neighbors[0].Identity.PlayerID)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New(nil, DefaultOptions(), logger.Discard())
	assert.Error(t, err)

	st := newStore(t, line(1, "2019-20", 10))
	opts := DefaultOptions()
	opts.StatWeights = map[models.Stat]float64{models.StatPoints: -1}
	_, err = New(st, opts, logger.Discard())
	assert.Error(t, err)

	bad := newStore(t, line(1, "2019", 10))
	_, err = New(bad, DefaultOptions(), logger.Discard())
	assert.ErrorIs(t, err, models.ErrInvalidSeasonID)

	// no season follows 9999-00, so the horizon cannot be extended
	last := newStore(t, line(1, "9998-99", 10), line(2, "9999-00", 12))
	p, err := New(last, DefaultOptions(), logger.Discard())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, models.ErrInvalidSeasonID)

	opts = DefaultOptions()
	opts.ExtendHorizon = false
	p, err = New(last, opts, logger.Discard())
	require.NoError(t, err)
	// the only candidate plays in the last season, which has no successor
	_, err = p.Project(context.Background(), 1, "9998-99", 1)
	assert.ErrorIs(t, err, models.ErrInsufficientNeighbors)
}

func TestNewFillsDefaults(t *testing.T) {
	p, err := New(newStore(t, line(1, "2019-20", 10)), Options{}, nil)
	require.NoError(t, err)

	opts := p.Options()
	assert.Equal(t, DefaultNeighbors, opts.K)
	assert.Equal(t, DefaultEpsilon, opts.Epsilon)
	assert.Equal(t, 1, opts.Workers)
	assert.NotNil(t, opts.Metric)
	assert.False(t, p.Chain().Contains("2020-21"))
}
