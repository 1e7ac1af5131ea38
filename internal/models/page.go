// Package models defines the domain types for Raido.
package models

import "time"

// Link kinds.
const (
	LinkInternal = "internal"
	LinkExternal = "external"
)

// PageMetadata is a lightweight representation returned by list operations.
type PageMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents an outgoing reference from a page.
//
// For internal links Target is a site-relative path normalised against the
// source page; for external links it is the full URL. Fragment carries the
// "#anchor" part, if any, without the leading hash.
type Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Fragment string `json:"fragment,omitempty"`
	Kind     string `json:"kind"`
}
