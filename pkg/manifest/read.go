package manifest

import (
	"encoding/json"
	"errors"

	"github.com/dtnitsch/assets-writer/pkg/storage"
	"github.com/tidwall/gjson"
)

// ReadFile loads a full-mode manifest written by AfterEmit, keeping key order.
func ReadFile(filePath string) (*AssetManifest, error) {
	data, err := (&storage.Storage{}).ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a full-mode manifest document.
func Parse(data []byte) (*AssetManifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("assets manifest is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.IsArray() {
		return nil, errors.New("assets manifest was written in names-only mode")
	}
	if !root.IsObject() {
		return nil, errors.New("assets manifest must be a JSON object")
	}

	m := &AssetManifest{
		PublicPath:        root.Get("publicPath").String(),
		Manifests:         Manifests{},
		Entrypoints:       Entrypoints{},
		AssetsByChunkName: ChunkFiles{},
		Chunks:            []json.RawMessage{},
	}

	root.Get("manifests").ForEach(func(key, value gjson.Result) bool {
		m.Manifests = append(m.Manifests, InlineSource{Name: key.String(), Source: value.String()})
		return true
	})

	root.Get("entrypoints").ForEach(func(key, value gjson.Result) bool {
		ep := EntrypointAssets{
			Name:   key.String(),
			Chunks: rawArray(value.Get("chunks")),
			Assets: rawArray(value.Get("assets")),
		}
		m.Entrypoints = append(m.Entrypoints, ep)
		return true
	})

	root.Get("assetsByChunkName").ForEach(func(key, value gjson.Result) bool {
		cf := ChunkFileList{Name: key.String(), Files: []string{}}
		for _, f := range value.Array() {
			cf.Files = append(cf.Files, f.String())
		}
		m.AssetsByChunkName = append(m.AssetsByChunkName, cf)
		return true
	})

	m.Chunks = rawArray(root.Get("chunks"))
	return m, nil
}

func rawArray(r gjson.Result) []json.RawMessage {
	items := r.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out
}

// AssetNames returns the qualified filenames of an entrypoint asset list,
// whichever form the assets were written in.
func (e EntrypointAssets) AssetNames() []string {
	names := make([]string, 0, len(e.Assets))
	for _, raw := range e.Assets {
		r := gjson.ParseBytes(raw)
		if r.IsObject() {
			names = append(names, r.Get("name").String())
			continue
		}
		names = append(names, r.String())
	}
	return names
}
