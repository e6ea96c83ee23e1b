package write

import (
	"fmt"
	"os"

	"github.com/dtnitsch/assets-writer/internal/common"
	"github.com/dtnitsch/assets-writer/internal/config"
	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"github.com/urfave/cli/v2"
)

// WriteAction handles one finished build: it is what a build script calls from
// its after-emit step.
func WriteAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := config.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	recorder, closeHistory, err := config.OpenHistory(cfg)
	if err != nil {
		logger.Error("failed to open history", "error", err, "path", cfg.HistoryDB)
		return cli.Exit(err.Error(), 2)
	}
	defer closeHistory()

	f := fetcher.NewFetcher()
	load := config.CompilationLoader(cfg, f)

	compilation, err := load(c.Context)
	if err != nil {
		logger.Error("failed to load compilation", "error", err, "stats", cfg.Stats)
		return cli.Exit(err.Error(), 1)
	}

	writer := manifest.NewWriter(cfg, logger, recorder)
	if err := writer.AfterEmit(compilation); err != nil {
		logger.Error("failed to write assets manifest", "error", err, "path", writer.OutputPath())
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(c.App.Writer, writer.OutputPath())
	return nil
}
