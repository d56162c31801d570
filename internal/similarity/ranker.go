package similarity

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/yourusername/nba-comps/internal/models"
)

const defaultBatchSize = 512

// Candidate is a player-season vector considered for ranking.
type Candidate struct {
	Identity models.Identity
	Vector   models.StatVector
}

// Ranker orders candidates by ascending distance to a query.
type Ranker struct {
	metric    Metric
	workers   int
	batchSize int
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithWorkers sets how many goroutines compute distances. Values below 1
// select GOMAXPROCS.
func WithWorkers(n int) RankerOption {
	return func(r *Ranker) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		r.workers = n
	}
}

// WithBatchSize sets how many candidates each unit of work covers.
func WithBatchSize(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewRanker creates a ranker using metric. A nil metric selects Euclidean.
func NewRanker(metric Metric, opts ...RankerOption) *Ranker {
	if metric == nil {
		metric = Distance
	}
	r := &Ranker{metric: metric, workers: 1, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scored struct {
	result models.NeighborResult
	self   bool
}

// Rank computes the distance from query to every candidate, drops the
// candidate sharing the query's identity, and sorts ascending by distance.
// Equal distances keep their input order. An empty candidate list yields an
// empty result.
func (r *Ranker) Rank(ctx context.Context, query Candidate, candidates []Candidate) ([]models.NeighborResult, error) {
	if len(candidates) == 0 {
		return []models.NeighborResult{}, nil
	}

	scores := make([]scored, len(candidates))
	var err error
	if r.workers <= 1 || len(candidates) <= r.batchSize {
		err = r.scoreRange(ctx, query, candidates, scores, 0, len(candidates))
	} else {
		err = r.scoreParallel(ctx, query, candidates, scores)
	}
	if err != nil {
		return nil, err
	}

	results := make([]models.NeighborResult, 0, len(candidates))
	for _, s := range scores {
		if !s.self {
			results = append(results, s.result)
		}
	}
	slices.SortStableFunc(results, func(a, b models.NeighborResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}

func (r *Ranker) scoreRange(ctx context.Context, query Candidate, candidates []Candidate, scores []scored, from, to int) error {
	for i := from; i < to; i++ {
		if (i-from)%r.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c := candidates[i]
		if c.Identity == query.Identity {
			scores[i] = scored{self: true}
			continue
		}
		d, err := r.metric(query.Vector, c.Vector)
		if err != nil {
			return fmt.Errorf("candidate %s: %w", c.Identity, err)
		}
		scores[i] = scored{result: models.NeighborResult{Identity: c.Identity, Distance: d}}
	}
	return nil
}

func (r *Ranker) scoreParallel(ctx context.Context, query Candidate, candidates []Candidate, scores []scored) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan [2]int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batches {
				if err := r.scoreRange(ctx, query, candidates, scores, b[0], b[1]); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}()
	}

	go func() {
		defer close(batches)
		for from := 0; from < len(candidates); from += r.batchSize {
			to := min(from+r.batchSize, len(candidates))
			select {
			case batches <- [2]int{from, to}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Top returns at most k leading results.
func Top(results []models.NeighborResult, k int) []models.NeighborResult {
	if k < 0 {
		k = 0
	}
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}
