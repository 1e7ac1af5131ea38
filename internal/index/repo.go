package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertPage inserts or replaces a page, its FTS entry, links, and anchors
// within a transaction.
func (db *DB) UpsertPage(p PageRow, body string, links []models.Link, anchors []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO pages (path, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.Title, p.Checksum, body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, p.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, fragment, kind) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(l.Source, l.Target, l.Fragment, l.Kind); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	// Replace anchors the same way.
	_, _ = tx.Exec(`DELETE FROM anchors WHERE path = ?`, p.Path)
	if len(anchors) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO anchors (path, anchor) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare anchor insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range anchors {
			if _, err := stmt.Exec(p.Path, a); err != nil {
				return fmt.Errorf("index: insert anchor: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its FTS entry, links, and anchors.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM anchors WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM pages WHERE path = ?`, path)

	return tx.Commit()
}

// GetPage returns the indexed row for a page, or nil if it is not indexed.
func (db *DB) GetPage(path string) (*PageRow, error) {
	var p PageRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, updated_at FROM pages WHERE path = ?
	`, path).Scan(&p.Path, &p.Title, &p.Checksum, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	return &p, nil
}

// ListPages returns pages ordered by sort ("path", "title", or "updated_at")
// with the total count.
func (db *DB) ListPages(limit, offset int, sort string) ([]PageRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	orderBy := "path"
	switch sort {
	case "title":
		orderBy = "title"
	case "updated_at":
		orderBy = "updated_at DESC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, updated_at FROM pages
		ORDER BY `+orderBy+` LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var p PageRow
		if err := rows.Scan(&p.Path, &p.Title, &p.Checksum, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// HasAnchor reports whether a page defines the given fragment anchor.
func (db *DB) HasAnchor(path, anchor string) (bool, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM anchors WHERE path = ? AND anchor = ?`, path, anchor).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("index: has anchor: %w", err)
	}
	return n > 0, nil
}

// AllLinks returns every indexed link.
func (db *DB) AllLinks() ([]models.Link, error) {
	rows, err := db.conn.Query(`SELECT source, target, fragment, kind FROM links`)
	if err != nil {
		return nil, fmt.Errorf("index: all links: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.Source, &l.Target, &l.Fragment, &l.Kind); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed page path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns a map of page path to stored checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
