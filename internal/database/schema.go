package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/yourusername/nba-comps/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Initialize connects and makes sure the tables exist.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the player-season and projection tables if missing.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
