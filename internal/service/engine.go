// Package service wires a record source to a live projector snapshot and
// refreshes it on demand.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/projection"
	"github.com/yourusername/nba-comps/internal/similarity"
	"github.com/yourusername/nba-comps/internal/store"
)

// EngineConfig holds the settings applied on every reload.
type EngineConfig struct {
	MinGamesPlayed int
	Projection     projection.Options
	CacheTTL       time.Duration
	CacheMaxSize   int
}

// EngineConfigFromConfig translates application configuration.
func EngineConfigFromConfig(cfg *config.Config) (EngineConfig, error) {
	metric, err := similarity.ParseMetric(cfg.Projection.Metric)
	if err != nil {
		return EngineConfig{}, err
	}
	weights, err := cfg.Projection.Weights()
	if err != nil {
		return EngineConfig{}, err
	}

	return EngineConfig{
		MinGamesPlayed: cfg.Data.MinGamesPlayed,
		Projection: projection.Options{
			K:             cfg.Projection.Neighbors,
			Epsilon:       cfg.Projection.Epsilon,
			Metric:        metric,
			StatWeights:   weights,
			Workers:       cfg.Projection.Workers,
			ExtendHorizon: cfg.Projection.ExtendHorizon,
		},
		CacheTTL:     cfg.CacheTTL(),
		CacheMaxSize: cfg.Projection.CacheMaxSize,
	}, nil
}

// Engine owns the current immutable projector snapshot. Reload builds a new
// snapshot and swaps it in; queries in flight keep the one they started with.
type Engine struct {
	source  store.Source
	cfg     EngineConfig
	logger  *logrus.Logger
	dataLog *logger.DataLogger

	mu        sync.RWMutex
	projector *projection.Projector
	service   projection.Service
	loadedAt  time.Time

	hooksMu  sync.RWMutex
	onReload []func(*projection.Projector)
}

// NewEngine creates an engine; call Reload before serving queries.
func NewEngine(source store.Source, cfg EngineConfig, log *logrus.Logger) *Engine {
	log = logger.OrDiscard(log)
	if cfg.Projection.Workers <= 0 {
		cfg.Projection.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		source:  source,
		cfg:     cfg,
		logger:  log,
		dataLog: logger.NewDataLogger(log),
	}
}

// LoadStore loads a source and applies the games-played floor.
func LoadStore(ctx context.Context, source store.Source, minGamesPlayed int, log *logrus.Logger) (*store.Store, error) {
	all, err := store.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	filtered := all.FilterByMinGamesPlayed(minGamesPlayed)
	logger.NewDataLogger(log).LogFilter(minGamesPlayed, all.Len(), filtered.Len())
	metrics.UpdateStoreRecords(filtered.Len())

	return filtered, nil
}

// OnReload registers fn to be called after every snapshot swap.
func (e *Engine) OnReload(fn func(*projection.Projector)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.onReload = append(e.onReload, fn)
}

// Reload reads the source again and replaces the snapshot.
func (e *Engine) Reload(ctx context.Context) (*projection.Projector, error) {
	st, err := LoadStore(ctx, e.source, e.cfg.MinGamesPlayed, e.logger)
	if err != nil {
		return nil, err
	}

	p, err := projection.New(st, e.cfg.Projection, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build projector: %w", err)
	}

	var svc projection.Service = p
	if e.cfg.CacheTTL > 0 {
		svc = projection.NewCachedService(p, p.Options().K, e.cfg.CacheTTL, e.cfg.CacheMaxSize)
	}

	e.mu.Lock()
	e.projector = p
	e.service = svc
	e.loadedAt = time.Now().UTC()
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"source":  e.source.Name(),
		"records": st.Len(),
		"seasons": len(st.Seasons()),
	}).Info("Projection snapshot loaded")

	e.hooksMu.RLock()
	for _, fn := range e.onReload {
		fn(p)
	}
	e.hooksMu.RUnlock()

	return p, nil
}

// Projector returns the current snapshot.
func (e *Engine) Projector() (*projection.Projector, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.projector == nil {
		return nil, models.ErrSnapshotNotLoaded
	}
	return e.projector, nil
}

// LoadedAt returns when the current snapshot was built.
func (e *Engine) LoadedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadedAt
}

// Project answers a query against the current snapshot, through the cache
// when one is configured.
func (e *Engine) Project(ctx context.Context, playerID int64, seasonID string, k int) (*models.ProjectionResult, error) {
	e.mu.RLock()
	svc := e.service
	e.mu.RUnlock()

	if svc == nil {
		return nil, models.ErrSnapshotNotLoaded
	}
	return svc.Project(ctx, playerID, seasonID, k)
}
