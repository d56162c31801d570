package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-comps/internal/models"
)

type countingService struct {
	calls int
	err   error
}

func (c *countingService) Project(ctx context.Context, playerID int64, seasonID string, k int) (*models.ProjectionResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.ProjectionResult{
		PlayerID:   playerID,
		BaseSeason: seasonID,
		K:          k,
		Stats:      map[string]float64{"pts": 20},
		Neighbors:  []models.NeighborContribution{{Identity: models.Identity{PlayerID: 2, SeasonID: seasonID}, Weight: 1}},
	}, nil
}

func TestCacheKeyString(t *testing.T) {
	assert.Equal(t, "201939:2018-19:10", CacheKey{PlayerID: 201939, SeasonID: "2018-19", K: 10}.String())
}

func TestCachedServiceHitsAndMisses(t *testing.T) {
	next := &countingService{}
	c := NewCachedService(next, 10, time.Minute, 0)
	ctx := context.Background()

	first, err := c.Project(ctx, 1, "2019-20", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, first.K)

	second, err := c.Project(ctx, 1, "2019-20", 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, next.calls)

	_, err = c.Project(ctx, 1, "2019-20", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	hits, misses, ratio := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
	assert.InDelta(t, 1.0/3.0, ratio, 1e-9)
	assert.Equal(t, 2, c.ItemCount())

	c.Clear()
	assert.Equal(t, 0, c.ItemCount())
	hits, misses, _ = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCachedServiceReturnsIndependentCopies(t *testing.T) {
	c := NewCachedService(&countingService{}, 10, time.Minute, 0)
	ctx := context.Background()

	first, err := c.Project(ctx, 1, "2019-20", 0)
	require.NoError(t, err)
	first.Stats["pts"] = -1
	first.Neighbors[0].Weight = 99

	second, err := c.Project(ctx, 1, "2019-20", 0)
	require.NoError(t, err)
	second.Stats["pts"] = -2
	second.Neighbors = append(second.Neighbors[:0], models.NeighborContribution{})

	third, err := c.Project(ctx, 1, "2019-20", 0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, third.Stats["pts"])
	require.Len(t, third.Neighbors, 1)
	assert.Equal(t, 1.0, third.Neighbors[0].Weight)
	assert.Equal(t, int64(2), third.Neighbors[0].Identity.PlayerID)
}

func TestCachedServiceDoesNotCacheErrors(t *testing.T) {
	next := &countingService{err: models.ErrInsufficientNeighbors}
	c := NewCachedService(next, 10, time.Minute, 0)

	for i := 0; i < 2; i++ {
		_, err := c.Project(context.Background(), 1, "2019-20", 3)
		assert.ErrorIs(t, err, models.ErrInsufficientNeighbors)
	}
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, c.ItemCount())
}

func TestCachedServiceMaxSize(t *testing.T) {
	next := &countingService{}
	c := NewCachedService(next, 10, time.Minute, 1)
	ctx := context.Background()

	_, err := c.Project(ctx, 1, "2019-20", 3)
	require.NoError(t, err)
	_, err = c.Project(ctx, 2, "2019-20", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())

	_, err = c.Project(ctx, 2, "2019-20", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestCachedServiceWrapsProjector(t *testing.T) {
	p := newProjector(t, weightedFixture(t), nil)
	var svc Service = NewCachedService(p, p.Options().K, time.Minute, 100)

	result, err := svc.Project(context.Background(), 1, "2019-20", 2)
	require.NoError(t, err)
	assert.InDelta(t, 50.0/3.0, result.Value(models.StatPoints), 1e-6)
}
