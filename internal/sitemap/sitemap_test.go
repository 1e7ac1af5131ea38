package sitemap

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func TestPageLink(t *testing.T) {
	cases := map[string]string{
		"guides/install.md": "guides/install.html",
		"ref/api.html":      "ref/api.html",
		"guides/index.md":   "guides/",
		"index.html":        "",
	}
	for in, want := range cases {
		if got := PageLink(in); got != want {
			t.Errorf("PageLink(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate(t *testing.T) {
	pages := []models.PageMetadata{
		{Path: "guides/install.md", UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Path: "index.md"},
	}
	body, err := Generate(pages, Options{
		BaseURL:    "https://docs.example.com/",
		URLScheme:  "latest/{link}",
		ChangeFreq: "weekly",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	s := string(body)
	if !strings.HasPrefix(s, xml.Header) {
		t.Errorf("missing xml header")
	}
	if !strings.Contains(s, "<loc>https://docs.example.com/latest/guides/install.html</loc>") {
		t.Errorf("missing install loc:\n%s", s)
	}
	if !strings.Contains(s, "<loc>https://docs.example.com/latest/</loc>") {
		t.Errorf("missing root loc:\n%s", s)
	}
	if !strings.Contains(s, "<lastmod>2026-01-02T03:04:05Z</lastmod>") {
		t.Errorf("missing lastmod:\n%s", s)
	}
	if !strings.Contains(s, "<changefreq>weekly</changefreq>") {
		t.Errorf("missing changefreq:\n%s", s)
	}

	// Round-trips as a valid urlset.
	var set URLSet
	if err := xml.Unmarshal(body, &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(set.URLs) != 2 {
		t.Errorf("urls = %d, want 2", len(set.URLs))
	}
}

func TestGenerate_RequiresBaseURL(t *testing.T) {
	if _, err := Generate(nil, Options{}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
