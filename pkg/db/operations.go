package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/assets-writer/models"
)

// ErrEmitNotFound is returned when no emit matches a lookup.
var ErrEmitNotFound = errors.New("emit not found")

const emitColumns = `emit_id, created_at, output_path, mode, public_path, build_hash,
	asset_count, manifest_chunks, content_hash, size_bytes`

// InsertEmit stores one emit record.
func (db *DB) InsertEmit(rec models.EmitRecord) error {
	_, err := db.Exec(`
		INSERT INTO emits (`+emitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.EmitID, rec.CreatedAt.UTC(), rec.OutputPath, rec.Mode.String(), rec.PublicPath,
		rec.BuildHash, rec.AssetCount, strings.Join(rec.ManifestChunks, ","),
		rec.ContentHash, rec.SizeBytes)
	if err != nil {
		return fmt.Errorf("failed to insert emit: %w", err)
	}
	return nil
}

// ListEmits returns the most recent emits first. limit <= 0 returns all.
func (db *DB) ListEmits(limit int) ([]models.EmitRecord, error) {
	query := `SELECT ` + emitColumns + ` FROM emits ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emits: %w", err)
	}
	defer rows.Close()

	var emits []models.EmitRecord
	for rows.Next() {
		rec, err := scanEmit(rows)
		if err != nil {
			return nil, err
		}
		emits = append(emits, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emits: %w", err)
	}
	return emits, nil
}

// GetEmit returns the emit with the given id.
func (db *DB) GetEmit(emitID string) (models.EmitRecord, error) {
	row := db.QueryRow(`SELECT `+emitColumns+` FROM emits WHERE emit_id = ?`, emitID)
	rec, err := scanEmit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmitRecord{}, fmt.Errorf("%w: %s", ErrEmitNotFound, emitID)
	}
	return rec, err
}

// LatestEmit returns the newest emit written to outputPath.
func (db *DB) LatestEmit(outputPath string) (models.EmitRecord, error) {
	row := db.QueryRow(`
		SELECT `+emitColumns+` FROM emits
		WHERE output_path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, outputPath)
	rec, err := scanEmit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmitRecord{}, fmt.Errorf("%w: %s", ErrEmitNotFound, outputPath)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmit(s scanner) (models.EmitRecord, error) {
	var (
		rec       models.EmitRecord
		mode      string
		buildHash sql.NullString
		chunks    sql.NullString
	)
	err := s.Scan(&rec.EmitID, &rec.CreatedAt, &rec.OutputPath, &mode, &rec.PublicPath,
		&buildHash, &rec.AssetCount, &chunks, &rec.ContentHash, &rec.SizeBytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan emit: %w", err)
	}

	rec.Mode = models.ParseOutputMode(mode)
	rec.BuildHash = buildHash.String
	if chunks.String != "" {
		rec.ManifestChunks = strings.Split(chunks.String, ",")
	}
	return rec, nil
}
