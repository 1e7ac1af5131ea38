package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/storage"
)

// RunMCP serves the documentation tools over MCP stdio transport.
func RunMCP(_ context.Context, cfg *Config) error {
	// stdout carries the MCP protocol; logs must go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

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

	return mcpserver.New(store, db, table).ServeStdio()
}
