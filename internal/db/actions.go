package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/assets-writer/internal/config"
	"github.com/dtnitsch/assets-writer/models"
	dbpkg "github.com/dtnitsch/assets-writer/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func openHistory(c *cli.Context) (*dbpkg.DB, models.WriterConfig, error) {
	cfg, err := config.ResolveConfig(c)
	if err != nil {
		return nil, cfg, err
	}
	if cfg.HistoryDB == "" {
		return nil, cfg, errors.New("emit history is off: set --history-db, ASSETS_WRITER_HISTORY_DB or history_db in the config file")
	}
	database, err := dbpkg.Open(cfg.HistoryDB)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to open database: %w", err)
	}
	return database, cfg, nil
}

// HistoryAction lists recorded emits, newest first.
func HistoryAction(c *cli.Context) error {
	database, _, err := openHistory(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer database.Close()

	emits, err := database.ListEmits(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list emits: %w", err)
	}

	w := c.App.Writer
	if len(emits) == 0 {
		fmt.Fprintf(w, "No emits recorded in %s\n", database.Path())
		return nil
	}

	// Print table header
	fmt.Fprintf(w, "%-36s %-16s %-10s %-8s %-10s %-30s\n",
		"ID", "When", "Mode", "Assets", "Size", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 116))

	for _, e := range emits {
		fmt.Fprintf(w, "%-36s %-16s %-10s %-8d %-10s %-30s\n",
			e.EmitID,
			humanize.Time(e.CreatedAt),
			e.Mode,
			e.AssetCount,
			humanize.Bytes(uint64(e.SizeBytes)),
			e.OutputPath,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d emits in %s\n", len(emits), database.Path())
	fmt.Fprintf(w, "\nTip: Use 'assets-writer history show <id>' to see details\n")

	return nil
}

// ShowEmitAction prints one emit, or the latest one when no id is given.
func ShowEmitAction(c *cli.Context) error {
	database, cfg, err := openHistory(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer database.Close()

	e, err := GetEmitOrLatest(c, database, cfg.OutputPath())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Emit %s\n", e.EmitID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Created:     %s (%s)\n", e.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(e.CreatedAt))
	fmt.Fprintf(w, "Output:      %s\n", e.OutputPath)
	fmt.Fprintf(w, "Mode:        %s\n", e.Mode)
	fmt.Fprintf(w, "Public path: %s\n", e.PublicPath)
	fmt.Fprintf(w, "Build hash:  %s\n", e.BuildHash)
	fmt.Fprintf(w, "Assets:      %d\n", e.AssetCount)
	fmt.Fprintf(w, "Manifests:   %s\n", strings.Join(e.ManifestChunks, ", "))
	fmt.Fprintf(w, "Size:        %s\n", humanize.Bytes(uint64(e.SizeBytes)))
	fmt.Fprintf(w, "SHA-256:     %s\n", e.ContentHash)

	return nil
}
