package db

import (
	"errors"
	"fmt"

	"github.com/dtnitsch/assets-writer/models"
	dbpkg "github.com/dtnitsch/assets-writer/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetEmitOrLatest returns the emit named in args, or the newest one written
// to outputPath if none is given.
func GetEmitOrLatest(c *cli.Context, database *dbpkg.DB, outputPath string) (models.EmitRecord, error) {
	if c.NArg() == 0 {
		e, err := database.LatestEmit(outputPath)
		if errors.Is(err, dbpkg.ErrEmitNotFound) {
			return models.EmitRecord{}, fmt.Errorf("no emits found for %s. Run 'assets-writer write --history-db ...' first", outputPath)
		}
		if err != nil {
			return models.EmitRecord{}, fmt.Errorf("failed to get latest emit: %w", err)
		}
		return e, nil
	}

	return database.GetEmit(c.Args().First())
}
