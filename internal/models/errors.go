package models

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	ErrPlayerSeasonNotFound  = errors.New("player season not found")
	ErrUnknownSeason         = errors.New("unknown season")
	ErrNoSuccessorSeason     = errors.New("no successor season")
	ErrDimensionMismatch     = errors.New("stat vector dimension mismatch")
	ErrInsufficientNeighbors = errors.New("insufficient neighbors")
	ErrDuplicatePlayerSeason = errors.New("duplicate player season")
	ErrMalformedRow          = errors.New("malformed row")
	ErrInvalidSeasonID       = errors.New("invalid season id")
	ErrSnapshotNotLoaded     = errors.New("record snapshot not loaded")
)

// RowError reports a row rejected while loading a tabular source.
type RowError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: row %d: column %q: %v", e.Source, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: row %d: %v", e.Source, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
