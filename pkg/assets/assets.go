// Package assets supplies compiled asset source text by filename.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/assets-writer/pkg/fetcher"
	"github.com/dtnitsch/assets-writer/pkg/storage"
)

// Dir reads assets from the build output directory.
type Dir struct {
	Path    string
	storage *storage.Storage
}

func NewDir(path string) *Dir {
	return &Dir{Path: path, storage: &storage.Storage{}}
}

func (d *Dir) Source(name string) (string, error) {
	data, err := d.storage.ReadFile(filepath.Join(d.Path, filepath.FromSlash(name)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HTTP reads assets from a dev server that keeps them in memory.
// Lookups are bounded by the fetcher's client timeout.
type HTTP struct {
	BaseURL string
	fetcher *fetcher.Fetcher
}

func NewHTTP(baseURL string, f *fetcher.Fetcher) *HTTP {
	return &HTTP{BaseURL: strings.TrimSuffix(baseURL, "/"), fetcher: f}
}

func (h *HTTP) Source(name string) (string, error) {
	data, err := h.fetcher.GetBytes(context.Background(), h.BaseURL+"/"+strings.TrimPrefix(name, "/"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Map is an in-memory asset table.
type Map map[string]string

func (m Map) Source(name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", fmt.Errorf("asset %s not found", name)
	}
	return src, nil
}

// Source is the lookup every implementation in this package provides.
type Source interface {
	Source(name string) (string, error)
}

// New picks an HTTP source for URLs and a directory source otherwise.
func New(location string, f *fetcher.Fetcher) Source {
	if fetcher.IsURL(location) {
		return NewHTTP(location, f)
	}
	return NewDir(location)
}

// ResolveLocation decides where compiled assets live when no explicit location
// is configured. Stats served over HTTP come from a dev server that serves the
// assets next to them; local stats use outputPath, else their own directory.
func ResolveLocation(configured, statsLocation, outputPath string) string {
	if configured != "" {
		return configured
	}
	if fetcher.IsURL(statsLocation) {
		if u, err := url.Parse(statsLocation); err == nil {
			return urlDir(u)
		}
	}
	if outputPath != "" {
		return outputPath
	}
	return filepath.Dir(statsLocation)
}

// urlDir drops the last path segment, the query and the fragment.
func urlDir(u *url.URL) string {
	dir := path.Dir(u.Path)
	if dir == "." || dir == "/" {
		dir = ""
	}
	u.Path, u.RawPath, u.RawQuery, u.Fragment = dir, "", "", ""
	return u.String()
}
