package similarity

import (
	"fmt"
	"math"

	"github.com/yourusername/nba-comps/internal/models"
)

// VectorBuilder extracts StatVectors from normalized records in a fixed
// statistic order. Components are scaled by sqrt(weight) so that Euclidean
// distance over built vectors equals the weighted Euclidean distance.
type VectorBuilder struct {
	order []models.Stat
	scale []float64
}

// NewVectorBuilder returns a builder over every tracked statistic. Stats
// missing from weights get weight 1; a zero weight removes the stat from the
// vector entirely.
func NewVectorBuilder(weights map[models.Stat]float64) (*VectorBuilder, error) {
	b := &VectorBuilder{}
	for _, s := range models.AllStats() {
		w := 1.0
		if override, ok := weights[s]; ok {
			w = override
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid weight %v for %s", w, s)
		}
		if w == 0 {
			continue
		}
		b.order = append(b.order, s)
		b.scale = append(b.scale, math.Sqrt(w))
	}
	if len(b.order) == 0 {
		return nil, fmt.Errorf("at least one statistic must have a positive weight")
	}
	return b, nil
}

// Order returns the statistic ordering of built vectors.
func (b *VectorBuilder) Order() []models.Stat {
	out := make([]models.Stat, len(b.order))
	copy(out, b.order)
	return out
}

// Build extracts the vector for one normalized record. All vectors built by
// the same builder share one Order slice.
func (b *VectorBuilder) Build(r models.NormalizedRecord) models.StatVector {
	values := make([]float64, len(b.order))
	for i, s := range b.order {
		values[i] = r.Values[s] * b.scale[i]
	}
	return models.StatVector{Order: b.order, Values: values}
}
