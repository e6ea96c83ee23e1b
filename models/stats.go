package models

import "encoding/json"

// CompilationStats is the part of a webpack stats document the assets writer reads.
// Ordered slices stand in for JSON objects so the output keeps the input key order.
type CompilationStats struct {
	Hash              string
	PublicPath        string
	OutputPath        string
	Assets            []Asset
	AssetsByChunkName []ChunkAssets
	Entrypoints       []Entrypoint
	Chunks            []Chunk
}

type Asset struct {
	Name string
}

// ChunkAssets is one assetsByChunkName entry. A bare filename decodes to a
// one-element Files; a null mapping leaves Files nil.
type ChunkAssets struct {
	Name  string
	Files []string
}

// ChunkRef is a chunk id as it appeared in the stats: a number or a string.
type ChunkRef struct {
	Raw json.RawMessage
	Key string
}

type Entrypoint struct {
	Name   string
	Chunks []ChunkRef
	Assets []EntryAsset
}

// EntryAsset is either a bare filename (Raw is nil) or an object with a name
// field, in which case Raw holds the whole object.
type EntryAsset struct {
	Name string
	Raw  json.RawMessage
}

// Chunk keeps the complete chunk record in Raw. Files and Siblings are
// decoded from it because they are the only fields that get rewritten.
type Chunk struct {
	Raw      json.RawMessage
	Files    []string
	Siblings []ChunkRef
}
