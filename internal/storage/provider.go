// Package storage defines the site tree file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for site tree file operations.
type Provider interface {
	// List returns metadata for every page file under dir (relative to the
	// tree root), skipping excluded paths.
	List(dir string) ([]models.PageMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the tree root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the tree root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the tree root).
	Delete(path string) error
}
