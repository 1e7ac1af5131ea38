package index

import "github.com/starford/raido/internal/models"

// PageIndex defines the interface for page indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PageIndex interface {
	UpsertPage(p PageRow, body string, links []models.Link, anchors []string) error
	DeletePage(path string) error
	GetPage(path string) (*PageRow, error)
	ListPages(limit, offset int, sort string) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	HasAnchor(path, anchor string) (bool, error)
	AllLinks() ([]models.Link, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	GetCheck(url string) (*CheckRow, error)
	PutCheck(row CheckRow) error
	BrokenChecks() ([]CheckRow, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
