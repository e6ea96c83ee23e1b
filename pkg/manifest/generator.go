package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/dtnitsch/assets-writer/models"
	"github.com/tidwall/sjson"
)

// QualifyPath joins the public path and an asset filename with POSIX
// semantics on every platform, collapsing duplicate separators.
func QualifyPath(publicPath, name string) string {
	return path.Join(publicPath, name)
}

func isManifestName(name string) bool {
	return strings.HasPrefix(name, ManifestPrefix)
}

// BuildNames returns every asset name qualified with the public path, in
// input order, without deduplication.
func BuildNames(stats *models.CompilationStats) []string {
	names := make([]string, 0, len(stats.Assets))
	for _, a := range stats.Assets {
		names = append(names, QualifyPath(stats.PublicPath, a.Name))
	}
	return names
}

// BuildFull produces the structured manifest. Manifest chunks are inlined from
// src; any manifest chunk without a usable asset aborts the whole build.
func BuildFull(stats *models.CompilationStats, src AssetSource) (*AssetManifest, error) {
	out := &AssetManifest{
		PublicPath:        stats.PublicPath,
		Manifests:         Manifests{},
		Entrypoints:       make(Entrypoints, 0, len(stats.Entrypoints)),
		AssetsByChunkName: make(ChunkFiles, 0, len(stats.AssetsByChunkName)),
		Chunks:            make([]json.RawMessage, 0, len(stats.Chunks)),
	}

	for _, ca := range stats.AssetsByChunkName {
		if !isManifestName(ca.Name) {
			continue
		}
		inline, err := inlineManifest(ca, src)
		if err != nil {
			return nil, err
		}
		out.Manifests = append(out.Manifests, inline)
	}

	for _, ep := range stats.Entrypoints {
		entry, err := qualifyEntrypoint(stats.PublicPath, ep)
		if err != nil {
			return nil, err
		}
		out.Entrypoints = append(out.Entrypoints, entry)
	}

	for _, ca := range stats.AssetsByChunkName {
		if ca.Files == nil {
			return nil, fmt.Errorf("%w: chunk %q", ErrMissingChunkAssets, ca.Name)
		}
		out.AssetsByChunkName = append(out.AssetsByChunkName, ChunkFileList{
			Name:  ca.Name,
			Files: qualifyAll(stats.PublicPath, ca.Files),
		})
	}

	for i, ch := range stats.Chunks {
		raw, err := qualifyChunk(stats.PublicPath, ch)
		if err != nil {
			return nil, fmt.Errorf("failed to rewrite chunks[%d]: %w", i, err)
		}
		out.Chunks = append(out.Chunks, raw)
	}

	return out, nil
}

func inlineManifest(ca models.ChunkAssets, src AssetSource) (InlineSource, error) {
	var (
		file  string
		found bool
	)
	for _, f := range ca.Files {
		if !strings.HasSuffix(f, ".map") {
			file, found = f, true
			break
		}
	}
	if !found {
		return InlineSource{}, fmt.Errorf("%w: chunk %q", ErrMissingManifestAsset, ca.Name)
	}
	if src == nil {
		return InlineSource{}, fmt.Errorf("%w: chunk %q file %q: no asset source", ErrAssetSource, ca.Name, file)
	}

	text, err := src.Source(file)
	if err != nil {
		return InlineSource{}, fmt.Errorf("%w: chunk %q file %q: %w", ErrAssetSource, ca.Name, file, err)
	}
	return InlineSource{Name: ca.Name, Source: text}, nil
}

// qualifyEntrypoint keeps the chunk list as given and drops manifest assets.
// Entrypoint chunk ids are not filtered, manifest-named or not.
func qualifyEntrypoint(publicPath string, ep models.Entrypoint) (EntrypointAssets, error) {
	entry := EntrypointAssets{
		Name:   ep.Name,
		Chunks: make([]json.RawMessage, 0, len(ep.Chunks)),
		Assets: make([]json.RawMessage, 0, len(ep.Assets)),
	}
	for _, c := range ep.Chunks {
		entry.Chunks = append(entry.Chunks, c.Raw)
	}

	for _, a := range ep.Assets {
		if isManifestName(a.Name) {
			continue
		}
		qualified := QualifyPath(publicPath, a.Name)

		var (
			raw []byte
			err error
		)
		if a.Raw == nil {
			raw, err = encode(qualified, false)
		} else {
			raw, err = sjson.SetBytes(append([]byte(nil), a.Raw...), "name", qualified)
		}
		if err != nil {
			return EntrypointAssets{}, fmt.Errorf("failed to qualify entrypoint %s asset %s: %w", ep.Name, a.Name, err)
		}
		entry.Assets = append(entry.Assets, raw)
	}
	return entry, nil
}

// qualifyChunk rewrites files and siblings in place, keeping every other field
// of the chunk record and its key order.
func qualifyChunk(publicPath string, ch models.Chunk) (json.RawMessage, error) {
	files, err := encode(qualifyAll(publicPath, ch.Files), false)
	if err != nil {
		return nil, err
	}

	siblings := make([]json.RawMessage, 0, len(ch.Siblings))
	for _, s := range ch.Siblings {
		if isManifestName(s.Key) {
			continue
		}
		siblings = append(siblings, s.Raw)
	}
	sib, err := encode(siblings, false)
	if err != nil {
		return nil, err
	}

	raw := append([]byte(nil), ch.Raw...)
	if raw, err = sjson.SetRawBytes(raw, "files", files); err != nil {
		return nil, err
	}
	if raw, err = sjson.SetRawBytes(raw, "siblings", sib); err != nil {
		return nil, err
	}
	return raw, nil
}

func qualifyAll(publicPath string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, QualifyPath(publicPath, n))
	}
	return out
}
