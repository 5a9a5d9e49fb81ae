// Package store persists cross-validation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	label      TEXT NOT NULL,
	started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS folds (
	run_id                  INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	fold_index              INTEGER NOT NULL,
	subject                 TEXT NOT NULL,
	observed                REAL,
	positive                REAL,
	negative                REAL,
	positive_edges          INTEGER NOT NULL DEFAULT 0,
	negative_edges          INTEGER NOT NULL DEFAULT 0,
	positive_low_confidence INTEGER NOT NULL DEFAULT 0,
	negative_low_confidence INTEGER NOT NULL DEFAULT 0,
	warnings                TEXT NOT NULL DEFAULT '',
	error                   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, fold_index)
);

CREATE TABLE IF NOT EXISTS performance (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	sign   TEXT NOT NULL,
	n      INTEGER NOT NULL,
	r      REAL,
	p      REAL,
	mae    REAL,
	rmse   REAL,
	PRIMARY KEY (run_id, sign)
);
`

// InitSchema creates the tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
