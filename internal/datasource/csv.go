package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/season"
)

// Column names of the per-game traditional stats table.
const (
	ColumnPlayerID    = "player_id"
	ColumnSeasonID    = "season_id"
	ColumnPlayerName  = "player_name"
	ColumnGamesPlayed = "gp"
)

// Options controls how tabular sources treat bad input.
type Options struct {
	// SkipMalformed drops rows with missing or unparseable tracked values
	// instead of failing the whole load.
	SkipMalformed bool
	Logger        *logrus.Logger
}

// CSVSource reads records from a local stats file, optionally joining player
// names from a second file.
type CSVSource struct {
	statsPath   string
	playersPath string
	opts        Options
}

// NewCSVSource creates a source for statsPath. playersPath may be empty.
func NewCSVSource(statsPath, playersPath string, opts Options) *CSVSource {
	return &CSVSource{statsPath: statsPath, playersPath: playersPath, opts: opts}
}

// Name returns the name of the data source
func (s *CSVSource) Name() string {
	return CSVSourceName
}

// Load reads and parses the stats file.
func (s *CSVSource) Load(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.statsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats file: %w", err)
	}
	defer f.Close()

	records, err := ParseStats(CSVSourceName, f, s.opts)
	if err != nil {
		return nil, err
	}

	if s.playersPath == "" {
		return records, nil
	}

	pf, err := os.Open(s.playersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open players file: %w", err)
	}
	defer pf.Close()

	dir, err := ReadPlayerDirectory(CSVSourceName, pf)
	if err != nil {
		return nil, err
	}
	dir.Apply(records)

	return records, nil
}

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(source string, r *csv.Reader, required []string) (header, error) {
	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.RowError{Source: source, Row: 1, Err: fmt.Errorf("%w: missing header", models.ErrMalformedRow)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", source, err)
	}

	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, &models.RowError{Source: source, Row: 1, Column: name,
				Err: fmt.Errorf("%w: required column missing", models.ErrMalformedRow)}
		}
	}
	return h, nil
}

func (h header) cell(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func statColumns() []string {
	cols := []string{ColumnPlayerID, ColumnSeasonID, ColumnGamesPlayed}
	for _, s := range models.AllStats() {
		cols = append(cols, s.String())
	}
	return cols
}

// ParseStats parses a stats table. Rows whose games-played and stat cells are
// all empty are dropped. Any other row with a missing or unparseable value is
// rejected with a *models.RowError, or skipped when opts.SkipMalformed is set.
func ParseStats(source string, r io.Reader, opts Options) ([]models.PlayerSeasonRecord, error) {
	dl := logger.NewDataLogger(opts.Logger)

	cr := newCSVReader(r)
	h, err := readHeader(source, cr, statColumns())
	if err != nil {
		return nil, err
	}

	var (
		records  []models.PlayerSeasonRecord
		dropped  int
		rejected int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		if h.trackedEmpty(row) {
			dropped++
			continue
		}

		rec, err := h.parseRecord(row)
		if err != nil {
			rowErr := &models.RowError{Source: source, Row: line, Err: err}
			var ce *cellError
			if errors.As(err, &ce) {
				rowErr.Column = ce.column
				rowErr.Err = ce.err
			}
			if !opts.SkipMalformed {
				return nil, rowErr
			}
			dl.LogRejectedRow(source, line, rowErr)
			rejected++
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordLoad(source, len(records), dropped, rejected)
	dl.LogLoad(source, len(records), dropped, rejected)

	return records, nil
}

func (h header) trackedEmpty(row []string) bool {
	if h.cell(row, ColumnGamesPlayed) != "" {
		return false
	}
	for _, s := range models.AllStats() {
		if h.cell(row, s.String()) != "" {
			return false
		}
	}
	return true
}

type cellError struct {
	column string
	err    error
}

func (e *cellError) Error() string { return e.column + ": " + e.err.Error() }
func (e *cellError) Unwrap() error { return e.err }

func malformed(column, format string, args ...any) error {
	return &cellError{column: column, err: fmt.Errorf("%w: "+format, append([]any{models.ErrMalformedRow}, args...)...)}
}

func (h header) parseRecord(row []string) (models.PlayerSeasonRecord, error) {
	var rec models.PlayerSeasonRecord

	id, err := parseWhole(h.cell(row, ColumnPlayerID))
	if err != nil {
		return rec, malformed(ColumnPlayerID, "%v", err)
	}
	rec.PlayerID = id

	rec.SeasonID = h.cell(row, ColumnSeasonID)
	if _, err := season.StartYear(rec.SeasonID); err != nil {
		return rec, malformed(ColumnSeasonID, "%v", err)
	}

	gp, err := parseWhole(h.cell(row, ColumnGamesPlayed))
	if err != nil || gp < 0 {
		return rec, malformed(ColumnGamesPlayed, "invalid games played %q", h.cell(row, ColumnGamesPlayed))
	}
	rec.GamesPlayed = int(gp)

	for _, s := range models.AllStats() {
		raw := h.cell(row, s.String())
		if raw == "" {
			return rec, malformed(s.String(), "missing value")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return rec, malformed(s.String(), "invalid number %q", raw)
		}
		if v < 0 {
			return rec, malformed(s.String(), "negative value %q", raw)
		}
		rec.SetValue(s, v)
	}

	rec.PlayerName = h.cell(row, ColumnPlayerName)
	return rec, nil
}

// parseWhole accepts integers written either plainly or as whole floats
// ("70.0"), which spreadsheet exports produce.
func parseWhole(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New("missing value")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return int64(f), nil
}
