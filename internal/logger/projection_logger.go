// Package logger provides projection-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ProjectionLogger provides dedicated logging for projection runs.
type ProjectionLogger struct {
	*logrus.Entry
}

// NewProjectionLogger creates a new projection logger.
func NewProjectionLogger(baseLogger *logrus.Logger) *ProjectionLogger {
	return &ProjectionLogger{
		Entry: OrDiscard(baseLogger).WithField("component", "projection"),
	}
}

// LogProjection logs a completed projection.
func (pl *ProjectionLogger) LogProjection(playerID int64, baseSeason, targetSeason string, k, retained int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"player_id":          playerID,
		"base_season":        baseSeason,
		"target_season":      targetSeason,
		"k":                  k,
		"neighbors_retained": retained,
		"duration_ms":        float64(duration.Microseconds()) / 1000,
	}).Debug("Projection completed")
}

// LogNeighborSkipped logs a neighbor dropped from the weighted average.
func (pl *ProjectionLogger) LogNeighborSkipped(playerID int64, seasonID, reason string) {
	pl.WithFields(logrus.Fields{
		"neighbor_player_id": playerID,
		"neighbor_season":    seasonID,
		"reason":             reason,
	}).Debug("Neighbor skipped")
}

// LogBatchCompleted logs a finished season batch.
func (pl *ProjectionLogger) LogBatchCompleted(seasonID string, projected, failed int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"season":      seasonID,
		"projected":   projected,
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
	}).Info("Season batch projection completed")
}

// LogEvaluation logs accuracy figures for a season evaluation.
func (pl *ProjectionLogger) LogEvaluation(baseSeason, targetSeason string, players int, pointsMAE float64) {
	pl.WithFields(logrus.Fields{
		"base_season":   baseSeason,
		"target_season": targetSeason,
		"players":       players,
		"pts_mae":       pointsMAE,
	}).Info("Projection evaluation completed")
}
