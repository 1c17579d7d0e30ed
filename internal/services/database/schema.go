package database

import (
	"context"
	"fmt"
)

// Schema creates the diagnoses table. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS diagnoses (
		id                   UUID PRIMARY KEY,
		industry             TEXT NOT NULL,
		tax_type             TEXT NOT NULL,
		revenue              INTEGER NOT NULL DEFAULT 0,
		estimated_income_tax INTEGER NOT NULL DEFAULT 0,
		estimated_vat        INTEGER NOT NULL DEFAULT 0,
		estimated_insurance  INTEGER NOT NULL DEFAULT 0,
		answers              JSONB NOT NULL,
		result               JSONB NOT NULL,
		source               TEXT NOT NULL DEFAULT 'web',
		batch_id             TEXT NOT NULL DEFAULT '',
		email                TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_diagnoses_created_at ON diagnoses (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_diagnoses_batch_id ON diagnoses (batch_id) WHERE batch_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_diagnoses_tax_type ON diagnoses (tax_type)`,
}

// EnsureSchema applies Schema.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
