package projection

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/similarity"
)

// Failure records a player-season that could not be projected.
type Failure struct {
	Identity models.Identity `json:"identity"`
	Err      error           `json:"-"`
	Reason   string          `json:"reason"`
}

// BatchResult holds the projections for one season cohort. Projections and
// failures keep the store's load order.
type BatchResult struct {
	RunID       uuid.UUID                  `json:"run_id"`
	Season      string                     `json:"season"`
	K           int                        `json:"k"`
	Projections []*models.ProjectionResult `json:"projections"`
	Failures    []Failure                  `json:"failures"`
	StartedAt   time.Time                  `json:"started_at"`
	Duration    time.Duration              `json:"duration"`
}

// ProjectSeason projects every player-season of one cohort. Individual
// failures are collected rather than aborting the batch; only cancellation
// stops it early.
func (p *Projector) ProjectSeason(ctx context.Context, seasonID string, k int) (*BatchResult, error) {
	if k <= 0 {
		k = p.opts.K
	}
	return p.runBatch(ctx, seasonID, k, p.cohortIdentities(seasonID), p.candidates)
}

func (p *Projector) cohortIdentities(seasonID string) []models.Identity {
	cohort := p.store.Cohort(seasonID)
	ids := make([]models.Identity, len(cohort))
	for i := range cohort {
		ids[i] = cohort[i].Identity()
	}
	return ids
}

func (p *Projector) runBatch(ctx context.Context, seasonID string, k int, ids []models.Identity, candidates []similarity.Candidate) (*BatchResult, error) {
	started := time.Now()
	results := make([]*models.ProjectionResult, len(ids))
	errs := make([]error, len(ids))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = p.project(ctx, ids[i], k, candidates)
			}
		}()
	}

dispatch:
	for i := range ids {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &BatchResult{
		RunID:     uuid.New(),
		Season:    seasonID,
		K:         k,
		StartedAt: started.UTC(),
	}
	for i := range ids {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, Failure{Identity: ids[i], Err: errs[i], Reason: errs[i].Error()})
			continue
		}
		batch.Projections = append(batch.Projections, results[i])
	}
	batch.Duration = time.Since(started)

	metrics.RecordBatchDuration(batch.Duration.Seconds())
	p.log.LogBatchCompleted(seasonID, len(batch.Projections), len(batch.Failures), batch.Duration)

	return batch, nil
}
