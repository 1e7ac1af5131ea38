package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CheckRow represents a cached external link-check result.
type CheckRow struct {
	URL       string
	Status    int
	OK        bool
	Error     string
	CheckedAt time.Time
}

// GetCheck returns the cached result for a URL, or nil if none is stored.
func (db *DB) GetCheck(url string) (*CheckRow, error) {
	var row CheckRow
	var ok int
	err := db.conn.QueryRow(`
		SELECT url, status, ok, error, checked_at FROM linkchecks WHERE url = ?
	`, url).Scan(&row.URL, &row.Status, &ok, &row.Error, &row.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get check: %w", err)
	}
	row.OK = ok != 0
	return &row, nil
}

// PutCheck stores (or replaces) a link-check result.
func (db *DB) PutCheck(row CheckRow) error {
	ok := 0
	if row.OK {
		ok = 1
	}
	_, err := db.conn.Exec(`
		INSERT INTO linkchecks (url, status, ok, error, checked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			status     = excluded.status,
			ok         = excluded.ok,
			error      = excluded.error,
			checked_at = excluded.checked_at
	`, row.URL, row.Status, ok, row.Error, row.CheckedAt)
	if err != nil {
		return fmt.Errorf("index: put check: %w", err)
	}
	return nil
}

// BrokenChecks returns every cached result that recorded a failure.
func (db *DB) BrokenChecks() ([]CheckRow, error) {
	rows, err := db.conn.Query(`
		SELECT url, status, ok, error, checked_at FROM linkchecks WHERE ok = 0 ORDER BY url
	`)
	if err != nil {
		return nil, fmt.Errorf("index: broken checks: %w", err)
	}
	defer rows.Close()

	var out []CheckRow
	for rows.Next() {
		var row CheckRow
		var ok int
		if err := rows.Scan(&row.URL, &row.Status, &ok, &row.Error, &row.CheckedAt); err != nil {
			return nil, err
		}
		row.OK = ok != 0
		out = append(out, row)
	}
	return out, rows.Err()
}
