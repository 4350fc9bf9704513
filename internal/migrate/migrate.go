// Package migrate holds the schema definition and the one-time timestamp
// conversion for the devices/power tables.
package migrate

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Reset drops and recreates both tables. It is destructive: any existing
// rows are discarded. Running it twice in a row leaves the database in the
// same empty-tables state.
func Reset(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range dropStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	for _, stmt := range createStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return tx.Commit()
}

// ConvertTimestamps migrates power.timestamp from TEXT to TIMESTAMP. A row
// whose text value does not parse as a timestamp aborts the migration; the
// enclosing transaction then rolls everything back, including the helper
// column, so the table is left exactly as it was.
func ConvertTimestamps(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range convertStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("timestamp conversion step %d failed: %w", i+1, err)
		}
	}

	return tx.Commit()
}
