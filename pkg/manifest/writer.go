package manifest

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/assets-writer/internal/common"
	"github.com/dtnitsch/assets-writer/models"
	"github.com/dtnitsch/assets-writer/pkg/storage"
	"github.com/google/uuid"
)

// HookName is the name the writer taps the host's after-emit hook under.
const HookName = "AssetsWriter"

// Writer turns a finished compilation into the assets file.
type Writer struct {
	config   models.WriterConfig
	storage  *storage.Storage
	logger   *slog.Logger
	recorder Recorder
}

// NewWriter applies defaults to cfg. logger and recorder may be nil.
func NewWriter(cfg models.WriterConfig, logger *slog.Logger, recorder Recorder) *Writer {
	cfg.Normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:   cfg,
		storage:  &storage.Storage{},
		logger:   logger,
		recorder: recorder,
	}
}

// OutputPath is where AfterEmit writes.
func (w *Writer) OutputPath() string {
	return w.config.OutputPath()
}

// Apply registers the writer with the host.
func (w *Writer) Apply(h Hooks) {
	h.TapAfterEmit(HookName, w.AfterEmit)
}

// Render builds the manifest for c and encodes it as tab-indented JSON.
func (w *Writer) Render(c *Compilation) ([]byte, error) {
	if c == nil || c.Stats == nil {
		return nil, ErrNoStats
	}

	var v any
	if w.config.NamesOnly {
		v = BuildNames(c.Stats)
	} else {
		m, err := BuildFull(c.Stats, c.Assets)
		if err != nil {
			return nil, err
		}
		v = m
	}

	data, err := encode(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return data, nil
}

// AfterEmit renders the manifest and replaces the output file in one write.
// Nothing is written when rendering fails.
func (w *Writer) AfterEmit(c *Compilation) error {
	start := time.Now()
	outputPath := w.OutputPath()

	data, err := w.Render(c)
	if err != nil {
		return fmt.Errorf("failed to build assets manifest: %w", err)
	}

	if err := w.storage.SaveFile(outputPath, data); err != nil {
		return err
	}

	w.logger.Info("assets manifest written",
		"path", outputPath,
		"mode", w.config.Mode().String(),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.recorder != nil {
		if err := w.recorder.InsertEmit(w.record(c.Stats, data)); err != nil {
			w.logger.Warn("failed to record emit", "path", outputPath, "error", err)
		}
	}
	return nil
}

func (w *Writer) record(stats *models.CompilationStats, data []byte) models.EmitRecord {
	rec := models.EmitRecord{
		EmitID:      uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		OutputPath:  w.OutputPath(),
		Mode:        w.config.Mode(),
		PublicPath:  stats.PublicPath,
		BuildHash:   stats.Hash,
		AssetCount:  len(stats.Assets),
		ContentHash: common.ContentHash(data),
		SizeBytes:   int64(len(data)),
	}
	if !w.config.NamesOnly {
		for _, ca := range stats.AssetsByChunkName {
			if isManifestName(ca.Name) {
				rec.ManifestChunks = append(rec.ManifestChunks, ca.Name)
			}
		}
	}
	return rec
}
