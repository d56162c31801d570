package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/projection"
)

// BatchSaver persists a batch of projections.
type BatchSaver interface {
	SaveBatch(ctx context.Context, batch *projection.BatchResult) error
}

// RefreshStats summarises one refresh run.
type RefreshStats struct {
	RunID     uuid.UUID     `json:"run_id"`
	Season    string        `json:"season"`
	Records   int           `json:"records"`
	Projected int           `json:"projected"`
	Failed    int           `json:"failed"`
	Persisted bool          `json:"persisted"`
	Duration  time.Duration `json:"duration_ns"`
}

// String returns a one-line summary.
func (s *RefreshStats) String() string {
	return fmt.Sprintf("run=%s season=%s records=%d projected=%d failed=%d persisted=%t duration=%v",
		s.RunID, s.Season, s.Records, s.Projected, s.Failed, s.Persisted, s.Duration)
}

// RefreshService reloads the engine and projects one season cohort.
type RefreshService struct {
	engine *Engine
	saver  BatchSaver
	season string
	logger *logrus.Logger

	mu        sync.RWMutex
	listeners []func(*RefreshStats)
}

// NewRefreshService creates a refresh service. An empty season selects the
// latest loaded season on every run; a nil saver skips persistence.
func NewRefreshService(engine *Engine, saver BatchSaver, season string, log *logrus.Logger) *RefreshService {
	return &RefreshService{
		engine: engine,
		saver:  saver,
		season: season,
		logger: logger.OrDiscard(log),
	}
}

// OnComplete registers fn to be called after every successful refresh.
func (r *RefreshService) OnComplete(fn func(*RefreshStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *RefreshService) notify(stats *RefreshStats) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fn := range r.listeners {
		fn(stats)
	}
}

// Refresh reloads the snapshot, projects the configured season and persists
// the batch.
func (r *RefreshService) Refresh(ctx context.Context) (*RefreshStats, error) {
	start := time.Now()

	p, err := r.engine.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload snapshot: %w", err)
	}

	seasonID := r.season
	if seasonID == "" {
		seasons := p.Store().Seasons()
		if len(seasons) == 0 {
			return nil, fmt.Errorf("no seasons loaded")
		}
		seasonID = seasons[len(seasons)-1]
	}

	batch, err := p.ProjectSeason(ctx, seasonID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to project season %s: %w", seasonID, err)
	}

	stats := &RefreshStats{
		RunID:     batch.RunID,
		Season:    seasonID,
		Records:   p.Store().Len(),
		Projected: len(batch.Projections),
		Failed:    len(batch.Failures),
	}

	if r.saver != nil {
		if err := r.saver.SaveBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to persist run %s: %w", batch.RunID, err)
		}
		stats.Persisted = true
	}
	stats.Duration = time.Since(start)

	r.logger.WithFields(logrus.Fields{
		"run_id":    stats.RunID,
		"season":    stats.Season,
		"projected": stats.Projected,
		"failed":    stats.Failed,
		"persisted": stats.Persisted,
	}).Info("Refresh completed")

	r.notify(stats)
	return stats, nil
}
