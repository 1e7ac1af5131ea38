// Package siteservice coordinates storage, index, and redirect lookups for
// the preview server and the MCP server.
package siteservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/redirects"
	"github.com/starford/raido/internal/storage"
)

// PageDetail is the full representation of a page.
type PageDetail struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Checksum  string    `json:"checksum"`
	Links     []string  `json:"links,omitempty"`
	Anchors   []string  `json:"anchors,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.PageIndex
	table redirects.Table
}

// NewService creates a new site service.
func NewService(store storage.Provider, db index.PageIndex, table redirects.Table) *Service {
	return &Service{store: store, db: db, table: table}
}

// GetPage reads a page from storage and parses it.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Path:      path,
		Title:     res.Title,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Links:     res.Links,
		Anchors:   res.Anchors,
		UpdatedAt: time.Now(),
	}, nil
}

// ListPages returns paginated pages from the index.
func (s *Service) ListPages(_ context.Context, limit, offset int, sort string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ResolveRedirect returns the replacement for a retired path.
func (s *Service) ResolveRedirect(_ context.Context, old string) (string, error) {
	target, ok := s.table.Resolve(old)
	if !ok {
		return "", apperr.ErrNotFound
	}
	return target, nil
}

// BrokenLinks returns cached link-check failures.
func (s *Service) BrokenLinks(_ context.Context) ([]index.CheckRow, error) {
	return s.db.BrokenChecks()
}
