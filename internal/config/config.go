package config

import (
	"context"
	"fmt"

	"github.com/dtnitsch/assets-writer/models"
	"github.com/dtnitsch/assets-writer/pkg/assets"
	"github.com/dtnitsch/assets-writer/pkg/db"
	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"github.com/dtnitsch/assets-writer/pkg/stats"
	"github.com/dtnitsch/assets-writer/pkg/watcher"
	"github.com/urfave/cli/v2"
)

// ResolveConfig layers the config file, environment and flags over the defaults.
func ResolveConfig(c *cli.Context) (models.WriterConfig, error) {
	path := models.DefaultConfigName
	if c.IsSet("config") {
		path = c.String("config")
	}

	cfg, err := models.LoadConfig(path, !c.IsSet("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("path") {
		cfg.OutputDir = c.String("path")
	}
	if c.IsSet("filename") {
		cfg.Filename = c.String("filename")
	}
	if c.IsSet("asset-names-only") {
		cfg.NamesOnly = c.Bool("asset-names-only")
	}
	if c.IsSet("stats") {
		cfg.Stats = c.String("stats")
	}
	if c.IsSet("assets") {
		cfg.Assets = c.String("assets")
	}
	if c.IsSet("history-db") {
		cfg.HistoryDB = c.String("history-db")
	}
	cfg.Normalize()

	return cfg, nil
}

// CompilationLoader reads the stats named by cfg and pairs them with an asset
// source for the build output.
func CompilationLoader(cfg models.WriterConfig, f *fetcher.Fetcher) watcher.LoadFunc {
	return watcher.CompilationLoader(
		func(ctx context.Context) (*models.CompilationStats, error) {
			return stats.Load(ctx, cfg.Stats, f)
		},
		func(s *models.CompilationStats) manifest.AssetSource {
			return assets.New(assets.ResolveLocation(cfg.Assets, cfg.Stats, s.OutputPath), f)
		},
	)
}

// OpenHistory opens the emit history when cfg enables it. The returned
// recorder is nil and close is a no-op when history is disabled.
func OpenHistory(cfg models.WriterConfig) (manifest.Recorder, func() error, error) {
	if cfg.HistoryDB == "" {
		return nil, func() error { return nil }, nil
	}
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return database, database.Close, nil
}
