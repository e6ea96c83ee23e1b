package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/assets-writer/internal/common"
	"github.com/dtnitsch/assets-writer/internal/config"
	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"github.com/dtnitsch/assets-writer/pkg/watcher"
	"github.com/urfave/cli/v2"
)

func WatchAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := config.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), 2)
	}
	if fetcher.IsURL(cfg.Stats) {
		return cli.Exit(fmt.Sprintf("watch needs a local stats file, got %s", cfg.Stats), 2)
	}

	recorder, closeHistory, err := config.OpenHistory(cfg)
	if err != nil {
		logger.Error("failed to open history", "error", err, "path", cfg.HistoryDB)
		return cli.Exit(err.Error(), 2)
	}
	defer closeHistory()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(cfg.Stats, config.CompilationLoader(cfg, fetcher.NewFetcher()), logger)
	if c.IsSet("debounce") {
		w.SetDebounce(c.Duration("debounce"))
	}
	manifest.NewWriter(cfg, logger, recorder).Apply(w)

	if c.Bool("initial") {
		if err := w.Emit(ctx); err != nil {
			logger.Error("initial build failed", "error", err)
		}
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("watcher failed", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	s := w.Stats()
	logger.Info("watch finished", "builds", s.Builds, "failed", s.Failed)
	return nil
}
