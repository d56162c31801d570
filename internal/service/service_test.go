package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/projection"
)

type fakeSource struct {
	records []models.PlayerSeasonRecord
	err     error
	loads   int
}

func (f *fakeSource) Load(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	f.loads++
	return f.records, f.err
}

func (f *fakeSource) Name() string { return "fake" }

type fakeSaver struct {
	batches []*projection.BatchResult
	err     error
}

func (f *fakeSaver) SaveBatch(ctx context.Context, batch *projection.BatchResult) error {
	f.batches = append(f.batches, batch)
	return f.err
}

func rec(playerID int64, seasonID string, gp int, pts float64) models.PlayerSeasonRecord {
	return models.PlayerSeasonRecord{PlayerID: playerID, SeasonID: seasonID, GamesPlayed: gp, Points: pts, Minutes: 30}
}

func fixtureRecords() []models.PlayerSeasonRecord {
	return []models.PlayerSeasonRecord{
		rec(1, "2015-16", 70, 10),
		rec(2, "2015-16", 70, 20),
		rec(3, "2015-16", 5, 30),
		rec(1, "2016-17", 70, 12),
		rec(2, "2016-17", 70, 18),
	}
}

func testConfig() EngineConfig {
	opts := projection.DefaultOptions()
	opts.K = 2
	return EngineConfig{MinGamesPlayed: 10, Projection: opts, CacheTTL: time.Minute, CacheMaxSize: 100}
}

func TestEngineNotLoaded(t *testing.T) {
	e := NewEngine(&fakeSource{}, testConfig(), logger.Discard())

	_, err := e.Project(context.Background(), 1, "2015-16", 1)
	assert.ErrorIs(t, err, models.ErrSnapshotNotLoaded)

	_, err = e.Projector()
	assert.ErrorIs(t, err, models.ErrSnapshotNotLoaded)
	assert.True(t, e.LoadedAt().IsZero())
}

func TestEngineReloadAppliesFilter(t *testing.T) {
	src := &fakeSource{records: fixtureRecords()}
	e := NewEngine(src, testConfig(), logger.Discard())

	p, err := e.Reload(context.Background())
	require.NoError(t, err)

	// player 3 played 5 games and is removed
	assert.Equal(t, 4, p.Store().Len())
	_, ok := p.Store().FindByIdentity(3, "2015-16")
	assert.False(t, ok)
	assert.False(t, e.LoadedAt().IsZero())

	// the nearest candidate is player 1's own later season, which has no
	// successor and is skipped
	result, err := e.Project(context.Background(), 1, "2015-16", 3)
	require.NoError(t, err)
	assert.Equal(t, "2016-17", result.TargetSeason)
	assert.Equal(t, 18.0, result.Value(models.StatPoints))
}

func TestEngineReloadSwapsSnapshot(t *testing.T) {
	src := &fakeSource{records: fixtureRecords()}
	e := NewEngine(src, testConfig(), logger.Discard())

	first, err := e.Reload(context.Background())
	require.NoError(t, err)

	src.records = append(src.records, rec(4, "2016-17", 70, 25))
	second, err := e.Reload(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 4, first.Store().Len())
	assert.Equal(t, 5, second.Store().Len())

	current, err := e.Projector()
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestEngineReloadError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(&fakeSource{err: boom}, testConfig(), logger.Discard())

	_, err := e.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRefreshLatestSeason(t *testing.T) {
	saver := &fakeSaver{}
	e := NewEngine(&fakeSource{records: fixtureRecords()}, testConfig(), logger.Discard())
	r := NewRefreshService(e, saver, "", logger.Discard())

	stats, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2016-17", stats.Season)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 2, stats.Projected+stats.Failed)
	assert.True(t, stats.Persisted)
	require.Len(t, saver.batches, 1)
	assert.Equal(t, stats.RunID, saver.batches[0].RunID)
	assert.Contains(t, stats.String(), "season=2016-17")
}

func TestRefreshConfiguredSeasonWithoutSaver(t *testing.T) {
	e := NewEngine(&fakeSource{records: fixtureRecords()}, testConfig(), logger.Discard())
	r := NewRefreshService(e, nil, "2015-16", logger.Discard())

	stats, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2015-16", stats.Season)
	assert.Equal(t, 2, stats.Projected)
	assert.False(t, stats.Persisted)
}

func TestRefreshNotifiesListeners(t *testing.T) {
	e := NewEngine(&fakeSource{records: fixtureRecords()}, testConfig(), logger.Discard())
	r := NewRefreshService(e, nil, "2015-16", logger.Discard())

	var seen []*RefreshStats
	r.OnComplete(func(s *RefreshStats) { seen = append(seen, s) })

	stats, err := r.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Same(t, stats, seen[0])

	failing := NewRefreshService(NewEngine(&fakeSource{err: errors.New("boom")}, testConfig(), logger.Discard()), nil, "", logger.Discard())
	failing.OnComplete(func(s *RefreshStats) { t.Fatal("listener called for failed refresh") })
	_, err = failing.Refresh(context.Background())
	assert.Error(t, err)
}

func TestRefreshSaveError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(&fakeSource{records: fixtureRecords()}, testConfig(), logger.Discard())
	r := NewRefreshService(e, &fakeSaver{err: boom}, "", logger.Discard())

	reloads := 0
	e.OnReload(func(p *projection.Projector) { reloads++ })
	r.OnComplete(func(*RefreshStats) { t.Fatal("refresh reported complete despite save failure") })

	_, err := r.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)

	// the snapshot was swapped before the save failed and keeps serving
	assert.Equal(t, 1, reloads)
	_, err = e.Projector()
	require.NoError(t, err)
	_, err = e.Project(context.Background(), 1, "2015-16", 2)
	assert.NoError(t, err)
}

func TestEngineOnReloadNotCalledOnFailure(t *testing.T) {
	e := NewEngine(&fakeSource{err: errors.New("boom")}, testConfig(), logger.Discard())

	called := false
	e.OnReload(func(*projection.Projector) { called = true })

	_, err := e.Reload(context.Background())
	assert.Error(t, err)
	assert.False(t, called)
}

func TestEngineConfigFromConfig(t *testing.T) {
	cfg := &config.Config{
		Data: config.DataConfig{MinGamesPlayed: 12},
		Projection: config.ProjectionConfig{
			Neighbors:       7,
			Epsilon:         1e-4,
			Metric:          "mean_abs",
			StatWeights:     map[string]float64{"blk": 0.25},
			ExtendHorizon:   true,
			CacheTTLSeconds: 60,
			CacheMaxSize:    10,
		},
	}

	ec, err := EngineConfigFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 12, ec.MinGamesPlayed)
	assert.Equal(t, 7, ec.Projection.K)
	assert.Equal(t, 1e-4, ec.Projection.Epsilon)
	assert.Equal(t, 0.25, ec.Projection.StatWeights[models.StatBlocks])
	assert.True(t, ec.Projection.ExtendHorizon)
	assert.Equal(t, time.Minute, ec.CacheTTL)
	assert.NotNil(t, ec.Projection.Metric)

	cfg.Projection.Metric = "cosine"
	_, err = EngineConfigFromConfig(cfg)
	assert.Error(t, err)
}
