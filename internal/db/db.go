package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS regions (
    id       INTEGER PRIMARY KEY,
    uf       TEXT NOT NULL CHECK(length(uf) BETWEEN 1 AND 2),
    city     TEXT NOT NULL,
    uses     INTEGER NOT NULL DEFAULT 1,
    used_at  TEXT NOT NULL,
    UNIQUE(uf, city)
);

CREATE INDEX IF NOT EXISTS idx_regions_used_at ON regions(used_at DESC);
`

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
