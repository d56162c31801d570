package projection

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/season"
	"github.com/yourusername/nba-comps/internal/similarity"
)

// StatError summarises projection error for one statistic.
type StatError struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// Evaluation compares projections made from one season against the actual
// lines recorded in the following season.
type Evaluation struct {
	BaseSeason   string               `json:"base_season"`
	TargetSeason string               `json:"target_season"`
	K            int                  `json:"k"`
	Players      int                  `json:"players"`
	Failed       int                  `json:"failed"`
	Errors       map[string]StatError `json:"errors"`
}

// Evaluate projects every player of seasonID who also has a record in the
// following season and measures the error against that record. Only
// neighbors from seasons before seasonID are eligible, so no neighbor's
// following season is later than seasonID itself.
func (p *Projector) Evaluate(ctx context.Context, seasonID string, k int) (*Evaluation, error) {
	if k <= 0 {
		k = p.opts.K
	}

	target, err := p.chain.Successor(seasonID)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %s: %w", seasonID, err)
	}
	baseYear, err := season.StartYear(seasonID)
	if err != nil {
		return nil, err
	}

	var ids []models.Identity
	for _, id := range p.cohortIdentities(seasonID) {
		if _, ok := p.store.FindByIdentity(id.PlayerID, target); ok {
			ids = append(ids, id)
		}
	}

	eligible := make([]similarity.Candidate, 0, len(p.candidates))
	for _, c := range p.candidates {
		// every store season was validated when the chain was built
		if y, _ := season.StartYear(c.Identity.SeasonID); y < baseYear {
			eligible = append(eligible, c)
		}
	}

	batch, err := p.runBatch(ctx, seasonID, k, ids, eligible)
	if err != nil {
		return nil, err
	}
	if len(batch.Projections) == 0 {
		return nil, fmt.Errorf("%w: no player in %s could be projected from earlier seasons",
			models.ErrInsufficientNeighbors, seasonID)
	}

	absErr := make([][]float64, models.NumStats)
	sqErr := make([][]float64, models.NumStats)
	for _, proj := range batch.Projections {
		actual, _ := p.store.FindByIdentity(proj.PlayerID, target)
		for _, s := range models.AllStats() {
			diff := proj.Value(s) - actual.Value(s)
			absErr[s] = append(absErr[s], math.Abs(diff))
			sqErr[s] = append(sqErr[s], diff*diff)
		}
	}

	eval := &Evaluation{
		BaseSeason:   seasonID,
		TargetSeason: target,
		K:            k,
		Players:      len(batch.Projections),
		Failed:       len(batch.Failures),
		Errors:       make(map[string]StatError, models.NumStats),
	}
	for _, s := range models.AllStats() {
		e := StatError{
			MAE:  stat.Mean(absErr[s], nil),
			RMSE: math.Sqrt(stat.Mean(sqErr[s], nil)),
		}
		eval.Errors[s.String()] = e
		metrics.UpdateEvaluationMAE(s.String(), e.MAE)
	}
	p.log.LogEvaluation(seasonID, target, eval.Players, eval.Errors[models.StatPoints.String()].MAE)

	return eval, nil
}
