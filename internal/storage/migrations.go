package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS evaluations (
					id TEXT PRIMARY KEY,
					dataset TEXT NOT NULL,
					row_count INTEGER NOT NULL,
					categories TEXT NOT NULL,
					reference_labels TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					evaluation_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					name TEXT NOT NULL,
					procedure TEXT NOT NULL,
					lambda REAL NOT NULL,
					skipped INTEGER NOT NULL DEFAULT 0,
					unmatched INTEGER NOT NULL DEFAULT 0,
					UNIQUE (evaluation_id, name),
					FOREIGN KEY (evaluation_id) REFERENCES evaluations(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX IF NOT EXISTS idx_runs_evaluation ON runs(evaluation_id)`,
				`CREATE TABLE IF NOT EXISTS confusion_cells (
					run_id INTEGER NOT NULL,
					reference TEXT NOT NULL,
					predicted TEXT NOT NULL,
					count INTEGER NOT NULL,
					PRIMARY KEY (run_id, reference, predicted),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Store boundary profiles",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS profile_values (
					evaluation_id TEXT NOT NULL,
					boundary INTEGER NOT NULL,
					criterion TEXT NOT NULL,
					position INTEGER NOT NULL,
					value REAL NOT NULL,
					PRIMARY KEY (evaluation_id, boundary, criterion),
					FOREIGN KEY (evaluation_id) REFERENCES evaluations(id) ON DELETE CASCADE
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("%w: expected %d, got %d", ErrSchemaMismatched, ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
