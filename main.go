package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/assets-writer/internal/db"
	"github.com/dtnitsch/assets-writer/internal/inject"
	"github.com/dtnitsch/assets-writer/internal/watch"
	"github.com/dtnitsch/assets-writer/internal/write"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "stats",
			Aliases: []string{"s"},
			Usage:   "webpack stats JSON file or URL (default: stats.json)",
			EnvVars: []string{"ASSETS_WRITER_STATS"},
		},
		&cli.StringFlag{
			Name:    "assets",
			Usage:   "directory or URL serving the compiled assets (default: stats outputPath)",
			EnvVars: []string{"ASSETS_WRITER_ASSETS"},
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"o"},
			Usage:   "output directory, must exist (default: ./build)",
			EnvVars: []string{"ASSETS_WRITER_PATH"},
		},
		&cli.StringFlag{
			Name:    "filename",
			Usage:   "output filename (default: assets.json)",
			EnvVars: []string{"ASSETS_WRITER_FILENAME"},
		},
		&cli.BoolFlag{
			Name:    "asset-names-only",
			Usage:   "write a flat list of qualified asset names",
			EnvVars: []string{"ASSETS_WRITER_ASSET_NAMES_ONLY"},
		},
		&cli.StringFlag{
			Name:    "history-db",
			Usage:   "record every emit in this SQLite database (history is off when unset)",
			EnvVars: []string{"ASSETS_WRITER_HISTORY_DB"},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "assets-writer",
		Usage: "Write the assets manifest for a finished webpack build",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (default: assets-writer.yaml when present)",
				EnvVars: []string{"ASSETS_WRITER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "write",
				Usage:  "Build the manifest from the current stats and write it once",
				Flags:  outputFlags(),
				Action: write.WriteAction,
			},
			{
				Name:  "watch",
				Usage: "Write the manifest every time the build rewrites its stats file",
				Flags: append(outputFlags(),
					&cli.BoolFlag{
						Name:  "initial",
						Usage: "handle the stats already on disk before waiting",
					},
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "wait this long for the stats file to settle",
						Value: 100 * time.Millisecond,
					},
				),
				Action: watch.WatchAction,
			},
			{
				Name:  "inject",
				Usage: "Add an entrypoint's scripts, styles and inlined manifests to an HTML page",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "assets manifest to read (default: the configured output file)",
					},
					&cli.StringFlag{
						Name:     "html",
						Usage:    "HTML page file or URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "entry",
						Aliases:  []string{"e"},
						Usage:    "entrypoint name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "write the page here instead of stdout",
					},
				),
				Action: inject.InjectAction,
			},
			{
				Name:  "history",
				Usage: "List emits recorded in the --history-db database",
				Flags: append(outputFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "number of emits to show, 0 for all",
						Value: 20,
					},
				),
				Action: db.HistoryAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show one emit, by default the latest written to the configured output file",
						ArgsUsage: "[emit-id]",
						Action:    db.ShowEmitAction,
					},
				},
			},
		},
	}
}
