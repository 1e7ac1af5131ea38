package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/linkcheck"
	"github.com/starford/raido/internal/storage"
)

// Check syncs the index with the site tree and validates every link.
// It returns an error when broken links are found, so the CLI exits non-zero.
func Check(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	store, err := storage.NewFS(cfg.Site.SourceDir, cfg.Site.Exclude...)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	table, err := loadRedirects(cfg, logger)
	if err != nil {
		return err
	}

	ignores, err := cfg.LinkCheck.IgnorePatterns()
	if err != nil {
		return err
	}

	checker := linkcheck.New(db, linkcheck.Options{
		Timeout:       cfg.LinkCheck.Timeout,
		Workers:       cfg.LinkCheck.Workers,
		Retries:       cfg.LinkCheck.Retries,
		External:      cfg.LinkCheck.External,
		Ignore:        ignores,
		AnchorsIgnore: cfg.LinkCheck.AnchorsIgnore,
		UserAgent:     cfg.LinkCheck.UserAgent,
		CacheTTL:      cfg.LinkCheck.CacheTTL,
		Redirects:     table,
	})

	report, err := checker.Run(ctx, logger)
	if err != nil {
		return err
	}

	logger.Info("Link check complete",
		slog.Int("checked", report.Checked),
		slog.Int("skipped", report.Skipped),
		slog.Int("cached", report.Cached),
		slog.Int("broken", len(report.Problems)))

	for _, p := range report.Problems {
		target := p.Target
		if p.Fragment != "" {
			target += "#" + p.Fragment
		}
		logger.Error("broken link",
			slog.String("source", p.Source),
			slog.String("target", target),
			slog.String("kind", p.Kind),
			slog.String("reason", p.Reason))
	}

	if !report.OK() {
		return fmt.Errorf("linkcheck: %d broken links", len(report.Problems))
	}
	return nil
}
