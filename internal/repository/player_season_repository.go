package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/nba-comps/internal/database"
	"github.com/yourusername/nba-comps/internal/models"
)

const playerSeasonSource = "postgres"

// PostgresPlayerSeasonRepository implements PlayerSeasonRepository for PostgreSQL
type PostgresPlayerSeasonRepository struct {
	db *database.DB
}

// NewPostgresPlayerSeasonRepository creates a new player-season repository
func NewPostgresPlayerSeasonRepository(db *database.DB) *PostgresPlayerSeasonRepository {
	return &PostgresPlayerSeasonRepository{db: db}
}

// nullableRow mirrors a player_seasons row; every tracked column may be NULL.
type nullableRow struct {
	PlayerID    int64
	SeasonID    string
	PlayerName  *string
	GamesPlayed *int32
	Stats       [models.NumStats]*float64
}

func (n *nullableRow) scanTargets() []any {
	targets := []any{&n.PlayerID, &n.SeasonID, &n.PlayerName, &n.GamesPlayed}
	for i := range n.Stats {
		targets = append(targets, &n.Stats[i])
	}
	return targets
}

// columnError names the offending column of a row that cannot become a
// record.
type columnError struct {
	column string
	reason string
}

// toRecord converts a scanned row. empty reports a row whose tracked columns
// are all NULL; such rows are skipped like empty CSV rows. A partially NULL
// row or a negative value returns the first offending column.
func (n *nullableRow) toRecord() (rec models.PlayerSeasonRecord, empty bool, bad *columnError) {
	empty = n.GamesPlayed == nil
	for _, v := range n.Stats {
		if v != nil {
			empty = false
		}
	}
	if empty {
		return rec, true, nil
	}

	if n.GamesPlayed == nil {
		return rec, false, &columnError{column: "gp", reason: "NULL value"}
	}
	if *n.GamesPlayed < 0 {
		return rec, false, &columnError{column: "gp", reason: fmt.Sprintf("negative value %d", *n.GamesPlayed)}
	}
	rec = models.PlayerSeasonRecord{
		PlayerID:    n.PlayerID,
		SeasonID:    n.SeasonID,
		GamesPlayed: int(*n.GamesPlayed),
	}
	if n.PlayerName != nil {
		rec.PlayerName = *n.PlayerName
	}
	for _, s := range models.AllStats() {
		v := n.Stats[s]
		if v == nil {
			return models.PlayerSeasonRecord{}, false, &columnError{column: statColumns[s], reason: "NULL value"}
		}
		if *v < 0 {
			return models.PlayerSeasonRecord{}, false, &columnError{column: statColumns[s], reason: fmt.Sprintf("negative value %g", *v)}
		}
		rec.SetValue(s, *v)
	}
	return rec, false, nil
}

// ListPlayerSeasons returns every stored player-season ordered by season and
// player.
func (r *PostgresPlayerSeasonRepository) ListPlayerSeasons(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	query := `
		SELECT player_id, season_id, player_name, gp, ` + strings.Join(statColumns, ", ") + `
		FROM player_seasons
		ORDER BY season_id ASC, player_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query player seasons: %w", err)
	}
	defer rows.Close()

	var records []models.PlayerSeasonRecord
	rowNum := 0
	for rows.Next() {
		rowNum++
		var n nullableRow
		if err := rows.Scan(n.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan player season: %w", err)
		}

		rec, empty, bad := n.toRecord()
		if empty {
			continue
		}
		if bad != nil {
			return nil, &models.RowError{
				Source: playerSeasonSource,
				Row:    rowNum,
				Column: bad.column,
				Err:    fmt.Errorf("%w: %s for %d/%s", models.ErrMalformedRow, bad.reason, n.PlayerID, n.SeasonID),
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpsertBatch inserts or replaces player-seasons keyed by (player_id, season_id)
func (r *PostgresPlayerSeasonRepository) UpsertBatch(ctx context.Context, records []models.PlayerSeasonRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := upsertPlayerSeasonQuery()
	batch := &pgx.Batch{}
	for i := range records {
		batch.Queue(query, playerSeasonArgs(&records[i])...)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for i := range records {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("failed to upsert %s: %w", records[i].Identity(), err)
		}
	}

	return len(records), nil
}

func upsertPlayerSeasonQuery() string {
	cols := append([]string{"player_id", "season_id", "player_name", "gp"}, statColumns...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := make([]string, 0, len(cols)-2)
	for _, c := range cols[2:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	return fmt.Sprintf(
		"INSERT INTO player_seasons (%s) VALUES (%s) ON CONFLICT (player_id, season_id) DO UPDATE SET %s",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
}

func playerSeasonArgs(rec *models.PlayerSeasonRecord) []any {
	var name *string
	if rec.PlayerName != "" {
		name = &rec.PlayerName
	}
	args := []any{rec.PlayerID, rec.SeasonID, name, rec.GamesPlayed}
	for _, s := range models.AllStats() {
		args = append(args, rec.Value(s))
	}
	return args
}
