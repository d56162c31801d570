// Package logger provides data loading logs.
package logger

import (
	"github.com/sirupsen/logrus"
)

// DataLogger provides dedicated logging for tabular source loads.
type DataLogger struct {
	*logrus.Entry
}

// NewDataLogger creates a new data logger.
func NewDataLogger(baseLogger *logrus.Logger) *DataLogger {
	return &DataLogger{
		Entry: OrDiscard(baseLogger).WithField("component", "data"),
	}
}

// LogLoad logs a finished load from a source.
func (dl *DataLogger) LogLoad(source string, loaded, emptyDropped, rejected int) {
	dl.WithFields(logrus.Fields{
		"source":        source,
		"loaded":        loaded,
		"empty_dropped": emptyDropped,
		"rejected":      rejected,
	}).Info("Records loaded")
}

// LogRejectedRow logs a malformed row that was skipped.
func (dl *DataLogger) LogRejectedRow(source string, row int, err error) {
	dl.WithFields(logrus.Fields{
		"source": source,
		"row":    row,
	}).WithError(err).Warn("Skipping malformed row")
}

// LogFilter logs the outcome of the games-played floor.
func (dl *DataLogger) LogFilter(threshold, before, after int) {
	dl.WithFields(logrus.Fields{
		"min_games_played": threshold,
		"before":           before,
		"after":            after,
	}).Info("Games-played filter applied")
}
