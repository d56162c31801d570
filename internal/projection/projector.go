// Package projection turns similar historical player-seasons into a weighted
// next-season stat line.
package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/normalize"
	"github.com/yourusername/nba-comps/internal/season"
	"github.com/yourusername/nba-comps/internal/similarity"
	"github.com/yourusername/nba-comps/internal/store"
)

// Defaults used when Options fields are left zero.
const (
	DefaultNeighbors = 10
	DefaultEpsilon   = 1e-6
)

// Skip reasons reported in logs and metrics.
const (
	skipNoSuccessorSeason = "no_successor_season"
	skipNoSuccessorRecord = "no_successor_record"
)

// Service answers single projection queries.
type Service interface {
	Project(ctx context.Context, playerID int64, seasonID string, k int) (*models.ProjectionResult, error)
}

// Options configures a Projector.
type Options struct {
	// K is the default neighbor count.
	K int
	// Epsilon floors neighbor distances before taking 1/distance weights.
	Epsilon float64
	// Metric measures vector distance. Nil selects Euclidean.
	Metric similarity.Metric
	// StatWeights scales individual stats in the distance. Missing stats
	// weigh 1.
	StatWeights map[models.Stat]float64
	// Workers is the number of goroutines used to rank candidates and to run
	// batch projections.
	Workers int
	// ExtendHorizon appends the season after the last loaded one to the chain
	// so that the latest season can be projected.
	ExtendHorizon bool
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		K:             DefaultNeighbors,
		Epsilon:       DefaultEpsilon,
		Metric:        similarity.Distance,
		Workers:       1,
		ExtendHorizon: true,
	}
}

// Projector projects player-seasons against an immutable store snapshot.
// It is safe for concurrent use.
type Projector struct {
	store      *store.Store
	chain      *season.Chain
	ranker     *similarity.Ranker
	candidates []similarity.Candidate
	index      map[models.Identity]int
	opts       Options
	log        *logger.ProjectionLogger
}

// New normalizes the store once and prepares candidate vectors.
func New(st *store.Store, opts Options, log *logrus.Logger) (*Projector, error) {
	if st == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if opts.K <= 0 {
		opts.K = DefaultNeighbors
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if opts.Metric == nil {
		opts.Metric = similarity.Distance
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	builder, err := similarity.NewVectorBuilder(opts.StatWeights)
	if err != nil {
		return nil, fmt.Errorf("invalid stat weights: %w", err)
	}

	chain, err := season.NewChain(st.Seasons())
	if err != nil {
		return nil, fmt.Errorf("failed to build season chain: %w", err)
	}
	if opts.ExtendHorizon {
		if chain, err = chain.WithHorizon(); err != nil {
			return nil, err
		}
	}

	normalized := normalize.Normalize(st.Records())
	p := &Projector{
		store:      st,
		chain:      chain,
		ranker:     similarity.NewRanker(opts.Metric, similarity.WithWorkers(opts.Workers)),
		candidates: make([]similarity.Candidate, len(normalized)),
		index:      make(map[models.Identity]int, len(normalized)),
		opts:       opts,
		log:        logger.NewProjectionLogger(log),
	}
	for i, n := range normalized {
		p.candidates[i] = similarity.Candidate{Identity: n.Identity, Vector: builder.Build(n)}
		p.index[n.Identity] = i
	}

	return p, nil
}

// Chain returns the season chain used for successor lookups.
func (p *Projector) Chain() *season.Chain {
	return p.chain
}

// Store returns the snapshot the projector was built from.
func (p *Projector) Store() *store.Store {
	return p.store
}

// Options returns the effective options.
func (p *Projector) Options() Options {
	return p.opts
}

// Project returns the weighted projection of the season following seasonID
// for one player. k <= 0 selects the configured default.
func (p *Projector) Project(ctx context.Context, playerID int64, seasonID string, k int) (*models.ProjectionResult, error) {
	return p.project(ctx, models.Identity{PlayerID: playerID, SeasonID: seasonID}, k, p.candidates)
}

func (p *Projector) project(ctx context.Context, id models.Identity, k int, candidates []similarity.Candidate) (*models.ProjectionResult, error) {
	start := time.Now()
	result, err := p.compute(ctx, id, k, candidates)

	status := "success"
	retained := 0
	switch {
	case err == nil:
		retained = len(result.Neighbors)
		p.log.LogProjection(id.PlayerID, id.SeasonID, result.TargetSeason, result.K, retained, time.Since(start))
	case errors.Is(err, models.ErrPlayerSeasonNotFound):
		status = "not_found"
	case errors.Is(err, models.ErrInsufficientNeighbors):
		status = "insufficient_neighbors"
	case errors.Is(err, models.ErrNoSuccessorSeason):
		status = "no_successor_season"
	default:
		status = "error"
	}
	metrics.RecordProjection(status, time.Since(start).Seconds(), retained)

	return result, err
}

func (p *Projector) compute(ctx context.Context, id models.Identity, k int, candidates []similarity.Candidate) (*models.ProjectionResult, error) {
	if k <= 0 {
		k = p.opts.K
	}

	qi, ok := p.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPlayerSeasonNotFound, id)
	}
	query := p.candidates[qi]

	target, err := p.chain.Successor(id.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("cannot project %s: %w", id, err)
	}

	ranked, err := p.ranker.Rank(ctx, query, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to rank neighbors for %s: %w", id, err)
	}

	type retained struct {
		contribution models.NeighborContribution
		next         models.PlayerSeasonRecord
	}
	var kept []retained
	var totalWeight float64

	for _, n := range similarity.Top(ranked, k) {
		next, err := p.chain.Successor(n.Identity.SeasonID)
		if err != nil {
			p.skip(n.Identity, skipNoSuccessorSeason)
			continue
		}
		rec, ok := p.store.FindByIdentity(n.Identity.PlayerID, next)
		if !ok {
			p.skip(n.Identity, skipNoSuccessorRecord)
			continue
		}

		d := n.Distance
		if d < p.opts.Epsilon {
			metrics.RecordDegenerateDistance()
			d = p.opts.Epsilon
		}
		weight := 1 / d
		totalWeight += weight

		name := rec.PlayerName
		if base, ok := p.store.FindByIdentity(n.Identity.PlayerID, n.Identity.SeasonID); ok && base.PlayerName != "" {
			name = base.PlayerName
		}
		kept = append(kept, retained{
			contribution: models.NeighborContribution{
				Identity:        n.Identity,
				PlayerName:      name,
				Distance:        n.Distance,
				Weight:          weight,
				SuccessorSeason: next,
			},
			next: rec,
		})
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: none of the %d nearest neighbors of %s has a following season",
			models.ErrInsufficientNeighbors, min(k, len(ranked)), id)
	}

	stats := make(map[string]float64, models.NumStats)
	for _, s := range models.AllStats() {
		var v float64
		for _, r := range kept {
			v += (r.contribution.Weight / totalWeight) * r.next.Value(s)
		}
		stats[s.String()] = v
	}

	neighbors := make([]models.NeighborContribution, len(kept))
	for i, r := range kept {
		neighbors[i] = r.contribution
	}

	base, _ := p.store.FindByIdentity(id.PlayerID, id.SeasonID)
	return &models.ProjectionResult{
		PlayerID:     id.PlayerID,
		PlayerName:   base.PlayerName,
		BaseSeason:   id.SeasonID,
		TargetSeason: target,
		K:            k,
		Stats:        stats,
		Neighbors:    neighbors,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func (p *Projector) skip(id models.Identity, reason string) {
	metrics.RecordNeighborSkipped(reason)
	p.log.LogNeighborSkipped(id.PlayerID, id.SeasonID, reason)
}
