package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/raido/internal/builder"
	"github.com/starford/raido/internal/sitemap"
	"github.com/starford/raido/internal/storage"
)

// Build produces the publication artifacts (redirect stubs, sitemap) for the
// configured site tree. A malformed redirect document is fatal; nothing is
// written in that case.
func Build(_ context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	source, err := storage.NewFS(cfg.Site.SourceDir, cfg.Site.Exclude...)
	if err != nil {
		return fmt.Errorf("init source tree: %w", err)
	}

	if err := os.MkdirAll(cfg.Site.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	output, err := storage.NewFS(cfg.Site.OutputDir)
	if err != nil {
		return fmt.Errorf("init output tree: %w", err)
	}

	b := builder.New(source, output, logger)
	summary, err := b.Build(builder.Options{
		RedirectsFile:  cfg.Redirects.File,
		SitemapEnabled: cfg.Sitemap.Enabled,
		SitemapFile:    cfg.Sitemap.Filename,
		Sitemap: sitemap.Options{
			BaseURL:    cfg.Site.BaseURL,
			URLScheme:  cfg.Sitemap.URLScheme,
			ChangeFreq: cfg.Sitemap.ChangeFreq,
			Priority:   cfg.Sitemap.Priority,
		},
	})
	if err != nil {
		return err
	}

	logger.Info("Build complete",
		slog.Int("pages", summary.Pages),
		slog.Int("redirects", summary.Redirects),
		slog.Int("aliases", summary.Aliases))
	return nil
}
