package manifest

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dtnitsch/assets-writer/models"
)

// ManifestPrefix marks chunks whose compiled source is inlined into the manifest.
const ManifestPrefix = "manifest"

var (
	// ErrMissingManifestAsset means a manifest chunk has no non-map asset to inline.
	ErrMissingManifestAsset = errors.New("manifest chunk has no inlineable asset")
	// ErrMissingChunkAssets means an assetsByChunkName entry maps to null.
	ErrMissingChunkAssets = errors.New("chunk has no asset mapping")
	// ErrAssetSource means the compiled source of a manifest asset could not be read.
	ErrAssetSource = errors.New("manifest asset source unavailable")
	// ErrNoStats means the host fired the hook without a stats snapshot.
	ErrNoStats = errors.New("compilation has no stats")
)

// AssetSource returns the compiled source text of an emitted asset.
type AssetSource interface {
	Source(name string) (string, error)
}

// Compilation is what the host hands to an after-emit hook.
type Compilation struct {
	Stats  *models.CompilationStats
	Assets AssetSource
}

// Hooks is implemented by the build host. Callbacks tapped on it run once per
// finished build, one at a time.
type Hooks interface {
	TapAfterEmit(name string, fn func(*Compilation) error)
}

// Recorder stores a record of every successful write.
type Recorder interface {
	InsertEmit(rec models.EmitRecord) error
}

// AssetManifest is the full-mode output.
type AssetManifest struct {
	PublicPath        string            `json:"publicPath"`
	Manifests         Manifests         `json:"manifests"`
	Entrypoints       Entrypoints       `json:"entrypoints"`
	AssetsByChunkName ChunkFiles        `json:"assetsByChunkName"`
	Chunks            []json.RawMessage `json:"chunks"`
}

// InlineSource is one inlined manifest chunk.
type InlineSource struct {
	Name   string
	Source string
}

// Manifests marshals as an object keyed by chunk name, in slice order.
type Manifests []InlineSource

// MarshalJSON writes the chunk name to source mapping.
func (m Manifests) MarshalJSON() ([]byte, error) {
	o := newObjectWriter()
	for _, s := range m {
		if err := o.field(s.Name, s.Source); err != nil {
			return nil, err
		}
	}
	return o.close(), nil
}

// Get returns the inlined source for a chunk name.
func (m Manifests) Get(name string) (string, bool) {
	for _, s := range m {
		if s.Name == name {
			return s.Source, true
		}
	}
	return "", false
}

// EntrypointAssets is one entrypoint in the output. Chunks are carried through
// as they appeared in the stats; Assets hold qualified filenames, or objects
// whose name was qualified.
type EntrypointAssets struct {
	Name   string            `json:"-"`
	Chunks []json.RawMessage `json:"chunks"`
	Assets []json.RawMessage `json:"assets"`
}

// Entrypoints marshals as an object keyed by entrypoint name, in slice order.
type Entrypoints []EntrypointAssets

// MarshalJSON writes each entrypoint's chunks and assets under its name.
func (e Entrypoints) MarshalJSON() ([]byte, error) {
	o := newObjectWriter()
	for _, ep := range e {
		if err := o.field(ep.Name, ep); err != nil {
			return nil, err
		}
	}
	return o.close(), nil
}

// Get returns the entrypoint with the given name.
func (e Entrypoints) Get(name string) (EntrypointAssets, bool) {
	for _, ep := range e {
		if ep.Name == name {
			return ep, true
		}
	}
	return EntrypointAssets{}, false
}

// ChunkFileList is one assetsByChunkName entry with qualified filenames.
type ChunkFileList struct {
	Name  string
	Files []string
}

// ChunkFiles marshals as an object keyed by chunk name, in slice order.
type ChunkFiles []ChunkFileList

// MarshalJSON writes each chunk's file list under its name.
func (c ChunkFiles) MarshalJSON() ([]byte, error) {
	o := newObjectWriter()
	for _, cf := range c {
		if err := o.field(cf.Name, cf.Files); err != nil {
			return nil, err
		}
	}
	return o.close(), nil
}

type objectWriter struct {
	buf bytes.Buffer
	n   int
}

func newObjectWriter() *objectWriter {
	o := &objectWriter{}
	o.buf.WriteByte('{')
	return o
}

func (o *objectWriter) field(key string, value any) error {
	k, err := encode(key, false)
	if err != nil {
		return err
	}
	v, err := encode(value, false)
	if err != nil {
		return err
	}
	if o.n > 0 {
		o.buf.WriteByte(',')
	}
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(v)
	o.n++
	return nil
}

func (o *objectWriter) close() []byte {
	o.buf.WriteByte('}')
	return o.buf.Bytes()
}

// encode marshals without HTML escaping so inlined scripts keep <, > and &
// verbatim. Indented output uses tabs and has no trailing newline.
func encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "\t")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
