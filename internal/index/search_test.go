package index

import (
	"testing"
	"time"
)

func TestSearch(t *testing.T) {
	db := testDB(t)
	pages := map[string]string{
		"guides/install.md": "How to install the agent on a cluster.",
		"guides/deploy.md":  "Deployment walkthrough.",
	}
	for p, body := range pages {
		if err := db.UpsertPage(PageRow{Path: p, Title: p, UpdatedAt: time.Now()}, body, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	results, err := db.Search("install", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "guides/install.md" {
		t.Errorf("results = %v", results)
	}

	results, err = db.Search("unmatchable", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}
