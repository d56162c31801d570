// Package similarity measures how alike two player-seasons are and ranks
// candidates against a query.
package similarity

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/nba-comps/internal/models"
)

// Metric computes a non-negative, symmetric distance between two vectors.
type Metric func(u, v models.StatVector) (float64, error)

// Metric names accepted by ParseMetric.
const (
	MetricEuclidean    = "euclidean"
	MetricMeanAbsolute = "mean_abs"
)

// Distance is the Euclidean distance sqrt(sum((u[i]-v[i])^2)).
func Distance(u, v models.StatVector) (float64, error) {
	if err := checkComparable(u, v); err != nil {
		return 0, err
	}
	if u.Len() == 0 {
		return 0, nil
	}
	return floats.Distance(u.Values, v.Values, 2), nil
}

// MeanAbsoluteDistance is the average absolute per-stat difference.
func MeanAbsoluteDistance(u, v models.StatVector) (float64, error) {
	if err := checkComparable(u, v); err != nil {
		return 0, err
	}
	if u.Len() == 0 {
		return 0, nil
	}
	return floats.Distance(u.Values, v.Values, 1) / float64(u.Len()), nil
}

// ParseMetric resolves a metric by name. An empty name selects Euclidean.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MetricEuclidean:
		return Distance, nil
	case MetricMeanAbsolute:
		return MeanAbsoluteDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}

func checkComparable(u, v models.StatVector) error {
	if !u.SameOrder(v) {
		return fmt.Errorf("%w: %d vs %d components", models.ErrDimensionMismatch, u.Len(), v.Len())
	}
	return nil
}
