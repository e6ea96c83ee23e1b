// Package stats decodes webpack compilation stats into models.CompilationStats.
//
// Decoding walks the document with gjson instead of encoding/json so that the
// key order of assetsByChunkName and entrypoints survives into the manifest.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtnitsch/assets-writer/models"
	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/storage"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned for stats that are missing a field the writer needs
// or that carry a field of the wrong shape.
var ErrMalformed = errors.New("malformed stats")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Load reads stats from a file path or an http(s) URL and decodes them.
func Load(ctx context.Context, location string, f *fetcher.Fetcher) (*models.CompilationStats, error) {
	var (
		data []byte
		err  error
	)
	if fetcher.IsURL(location) {
		data, err = f.GetBytes(ctx, location)
	} else {
		data, err = (&storage.Storage{}).ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return Decode(data)
}

// Decode parses a stats document.
func Decode(data []byte) (*models.CompilationStats, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed("stats are not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, malformed("stats must be a JSON object")
	}

	publicPath := root.Get("publicPath")
	if publicPath.Type != gjson.String {
		return nil, malformed("publicPath must be a string")
	}

	out := &models.CompilationStats{
		Hash:       root.Get("hash").String(),
		PublicPath: publicPath.String(),
		OutputPath: root.Get("outputPath").String(),
	}

	var err error
	if out.Assets, err = decodeAssets(root.Get("assets")); err != nil {
		return nil, err
	}
	if out.AssetsByChunkName, err = decodeAssetsByChunkName(root.Get("assetsByChunkName")); err != nil {
		return nil, err
	}
	if out.Entrypoints, err = decodeEntrypoints(root.Get("entrypoints")); err != nil {
		return nil, err
	}
	if out.Chunks, err = decodeChunks(root.Get("chunks")); err != nil {
		return nil, err
	}

	return out, nil
}

func decodeAssets(r gjson.Result) ([]models.Asset, error) {
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, malformed("assets must be an array")
	}

	items := r.Array()
	assets := make([]models.Asset, 0, len(items))
	for i, item := range items {
		name := item.Get("name")
		if name.Type != gjson.String {
			return nil, malformed("assets[%d] has no name", i)
		}
		assets = append(assets, models.Asset{Name: name.String()})
	}
	return assets, nil
}

func decodeAssetsByChunkName(r gjson.Result) ([]models.ChunkAssets, error) {
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsObject() {
		return nil, malformed("assetsByChunkName must be an object")
	}

	var (
		out []models.ChunkAssets
		err error
	)
	r.ForEach(func(key, value gjson.Result) bool {
		entry := models.ChunkAssets{Name: key.String()}
		switch {
		case value.Type == gjson.String:
			entry.Files = []string{value.String()}
		case value.IsArray():
			entry.Files, err = stringArray(value, "assetsByChunkName."+entry.Name)
		case value.Type == gjson.Null:
			// Files stays nil; the extractor reports the chunk.
		default:
			err = malformed("assetsByChunkName.%s must be a filename or a list of filenames", entry.Name)
		}
		if err != nil {
			return false
		}
		out = append(out, entry)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeEntrypoints(r gjson.Result) ([]models.Entrypoint, error) {
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsObject() {
		return nil, malformed("entrypoints must be an object")
	}

	var (
		out []models.Entrypoint
		err error
	)
	r.ForEach(func(key, value gjson.Result) bool {
		ep := models.Entrypoint{Name: key.String()}
		field := "entrypoints." + ep.Name

		if ep.Chunks, err = chunkRefs(value.Get("chunks"), field+".chunks"); err != nil {
			return false
		}
		if ep.Assets, err = entryAssets(value.Get("assets"), field+".assets"); err != nil {
			return false
		}
		out = append(out, ep)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeChunks(r gjson.Result) ([]models.Chunk, error) {
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, malformed("chunks must be an array")
	}

	items := r.Array()
	out := make([]models.Chunk, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, malformed("chunks[%d] must be an object", i)
		}
		field := fmt.Sprintf("chunks[%d]", i)

		if !item.Get("files").Exists() {
			return nil, malformed("%s.files missing", field)
		}
		files, err := stringArray(item.Get("files"), field+".files")
		if err != nil {
			return nil, err
		}
		siblings, err := chunkRefs(item.Get("siblings"), field+".siblings")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Chunk{
			Raw:      json.RawMessage(item.Raw),
			Files:    files,
			Siblings: siblings,
		})
	}
	return out, nil
}

func stringArray(r gjson.Result, field string) ([]string, error) {
	if !r.Exists() {
		return []string{}, nil
	}
	if !r.IsArray() {
		return nil, malformed("%s must be an array", field)
	}
	items := r.Array()
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, malformed("%s[%d] must be a string", field, i)
		}
		out = append(out, item.String())
	}
	return out, nil
}

func chunkRefs(r gjson.Result, field string) ([]models.ChunkRef, error) {
	if !r.Exists() {
		return []models.ChunkRef{}, nil
	}
	if !r.IsArray() {
		return nil, malformed("%s must be an array", field)
	}
	items := r.Array()
	out := make([]models.ChunkRef, 0, len(items))
	for _, item := range items {
		key := item.Raw
		if item.Type == gjson.String {
			key = item.String()
		}
		out = append(out, models.ChunkRef{Raw: json.RawMessage(item.Raw), Key: key})
	}
	return out, nil
}

func entryAssets(r gjson.Result, field string) ([]models.EntryAsset, error) {
	if !r.Exists() {
		return []models.EntryAsset{}, nil
	}
	if !r.IsArray() {
		return nil, malformed("%s must be an array", field)
	}
	items := r.Array()
	out := make([]models.EntryAsset, 0, len(items))
	for i, item := range items {
		switch {
		case item.Type == gjson.String:
			out = append(out, models.EntryAsset{Name: item.String()})
		case item.IsObject() && item.Get("name").Type == gjson.String:
			out = append(out, models.EntryAsset{
				Name: item.Get("name").String(),
				Raw:  json.RawMessage(item.Raw),
			})
		default:
			return nil, malformed("%s[%d] must be a filename or an object with a name", field, i)
		}
	}
	return out, nil
}
