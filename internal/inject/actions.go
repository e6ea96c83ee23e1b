package inject

import (
	"fmt"
	"os"

	"github.com/dtnitsch/assets-writer/internal/common"
	"github.com/dtnitsch/assets-writer/internal/config"
	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/inject"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"github.com/dtnitsch/assets-writer/pkg/storage"
	"github.com/urfave/cli/v2"
)

func InjectAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := config.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	manifestPath := cfg.OutputPath()
	if c.IsSet("manifest") {
		manifestPath = c.String("manifest")
	}
	m, err := manifest.ReadFile(manifestPath)
	if err != nil {
		logger.Error("failed to read assets manifest", "error", err, "path", manifestPath)
		return cli.Exit(err.Error(), 1)
	}

	s := &storage.Storage{}
	htmlPath := c.String("html")
	var page []byte
	if fetcher.IsURL(htmlPath) {
		page, err = fetcher.NewFetcher().GetBytes(c.Context, htmlPath)
	} else {
		page, err = s.ReadFile(htmlPath)
	}
	if err != nil {
		logger.Error("failed to load page", "error", err, "html", htmlPath)
		return cli.Exit(err.Error(), 1)
	}

	out, err := inject.Inject(page, m, c.String("entry"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if !c.IsSet("out") {
		_, err = c.App.Writer.Write(out)
		return err
	}
	if err := s.SaveFile(c.String("out"), out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.ErrWriter, c.String("out"))
	return nil
}
