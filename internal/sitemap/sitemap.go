// Package sitemap renders the sitemaps.org XML index for the published site.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the root element of a sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Options controls sitemap rendering.
type Options struct {
	// BaseURL is the site origin, e.g. "https://docs.example.com".
	BaseURL string
	// URLScheme is applied to each page link; "{link}" is replaced with the
	// published link, e.g. "latest/{link}".
	URLScheme  string
	ChangeFreq string
	Priority   string
}

// PageLink converts a source page path to its published link:
// Markdown sources publish as .html, directory indexes as their directory.
func PageLink(pagePath string) string {
	link := pagePath
	if ext := path.Ext(link); ext == ".md" {
		link = strings.TrimSuffix(link, ext) + ".html"
	}
	if path.Base(link) == "index.html" {
		link = path.Dir(link) + "/"
		if link == "./" {
			link = ""
		}
	}
	return link
}

// Generate renders the sitemap for the given pages, sorted by location.
func Generate(pages []models.PageMetadata, opts Options) ([]byte, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("sitemap: base URL is required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	set := URLSet{Xmlns: xmlns, URLs: make([]URL, 0, len(pages))}
	for _, p := range pages {
		link := PageLink(p.Path)
		if opts.URLScheme != "" {
			link = strings.ReplaceAll(opts.URLScheme, "{link}", link)
		}
		u := URL{
			Loc:        base + "/" + link,
			ChangeFreq: opts.ChangeFreq,
			Priority:   opts.Priority,
		}
		if !p.UpdatedAt.IsZero() {
			u.LastMod = p.UpdatedAt.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}
	sort.Slice(set.URLs, func(i, j int) bool { return set.URLs[i].Loc < set.URLs[j].Loc })

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap: marshal: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
