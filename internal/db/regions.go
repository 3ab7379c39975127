package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coleta/internal/model"
)

// sortable fixed-width UTC timestamps
const timeLayout = "2006-01-02T15:04:05.000000Z"

var ErrEmptyRegion = errors.New("region needs both uf and city")

// TouchRegion records a search of r at the given time, creating the row or
// bumping its use count.
func TouchRegion(db *sql.DB, r model.RegionQuery, at time.Time) error {
	r = r.Normalize()
	if r.UF == "" || r.City == "" {
		return ErrEmptyRegion
	}

	query := `
		INSERT INTO regions (uf, city, uses, used_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(uf, city) DO UPDATE SET
			uses = uses + 1,
			used_at = excluded.used_at
	`
	if _, err := db.Exec(query, r.UF, r.City, at.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("failed to record region: %w", err)
	}
	return nil
}

// RecentRegions lists up to limit regions, most recently used first.
func RecentRegions(db *sql.DB, limit int) ([]model.RecentRegion, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT uf, city, uses, used_at
		FROM regions
		ORDER BY used_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var results []model.RecentRegion
	for rows.Next() {
		var rr model.RecentRegion
		var usedAt string
		if err := rows.Scan(&rr.Region.UF, &rr.Region.City, &rr.Uses, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		if t, err := time.Parse(timeLayout, usedAt); err == nil {
			rr.UsedAt = t
		}
		results = append(results, rr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}

	return results, nil
}

// ForgetRegion removes r from the recent list.
func ForgetRegion(db *sql.DB, r model.RegionQuery) error {
	r = r.Normalize()
	if _, err := db.Exec(`DELETE FROM regions WHERE uf = ? AND city = ?`, r.UF, r.City); err != nil {
		return fmt.Errorf("failed to delete region: %w", err)
	}
	return nil
}
