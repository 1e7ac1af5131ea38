package api

import (
	"github.com/starford/raido/internal/siteservice"
)

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = siteservice.PageDetail

// PageListItem is a lightweight item in a list response (aliased from the domain layer).
type PageListItem = siteservice.PageListItem

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// RedirectResponse is the result of resolving a retired path.
type RedirectResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BrokenLink is one cached external link-check failure.
type BrokenLink struct {
	URL    string `json:"url"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error"`
}

// BrokenLinksResponse wraps the cached link-check failures.
type BrokenLinksResponse struct {
	Links []BrokenLink `json:"links"`
}
