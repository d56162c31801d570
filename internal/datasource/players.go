package datasource

import (
	"errors"
	"fmt"
	"io"

	"github.com/yourusername/nba-comps/internal/models"
)

// PlayerDirectory resolves display names by (player, season), falling back to
// the player alone when the table has no season column or no matching row.
type PlayerDirectory struct {
	bySeason map[models.Identity]string
	byPlayer map[int64]string
}

// ReadPlayerDirectory parses a player_id, player_name[, season_id] table.
// Rows without a name are ignored; later rows win.
func ReadPlayerDirectory(source string, r io.Reader) (*PlayerDirectory, error) {
	cr := newCSVReader(r)
	h, err := readHeader(source, cr, []string{ColumnPlayerID, ColumnPlayerName})
	if err != nil {
		return nil, err
	}

	d := &PlayerDirectory{
		bySeason: make(map[models.Identity]string),
		byPlayer: make(map[int64]string),
	}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read player row: %w", source, err)
		}

		name := h.cell(row, ColumnPlayerName)
		if name == "" {
			continue
		}
		id, err := parseWhole(h.cell(row, ColumnPlayerID))
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &models.RowError{Source: source, Row: line, Column: ColumnPlayerID,
				Err: fmt.Errorf("%w: %v", models.ErrMalformedRow, err)}
		}

		d.byPlayer[id] = name
		if seasonID := h.cell(row, ColumnSeasonID); seasonID != "" {
			d.bySeason[models.Identity{PlayerID: id, SeasonID: seasonID}] = name
		}
	}

	return d, nil
}

// Len returns the number of distinct players with a name.
func (d *PlayerDirectory) Len() int {
	return len(d.byPlayer)
}

// Lookup returns the name for a player-season.
func (d *PlayerDirectory) Lookup(playerID int64, seasonID string) (string, bool) {
	if name, ok := d.bySeason[models.Identity{PlayerID: playerID, SeasonID: seasonID}]; ok {
		return name, true
	}
	name, ok := d.byPlayer[playerID]
	return name, ok
}

// Apply fills PlayerName on records that lack one and returns how many were
// named.
func (d *PlayerDirectory) Apply(records []models.PlayerSeasonRecord) int {
	named := 0
	for i := range records {
		if records[i].PlayerName != "" {
			continue
		}
		if name, ok := d.Lookup(records[i].PlayerID, records[i].SeasonID); ok {
			records[i].PlayerName = name
			named++
		}
	}
	return named
}
