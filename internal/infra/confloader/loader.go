package confloader

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/core/merge"
)

// LoadOptions are the per-gather options a Loader honors.
type LoadOptions struct {
	// ErrorOnEmpty turns a zero-length file into ErrEmptyFile instead of
	// an absent fragment.
	ErrorOnEmpty bool
}

// Loader parses one file into a configuration value. A nil value with a
// nil error means the file contributes nothing.
type Loader interface {
	Load(ctx context.Context, appName, path string, opts LoadOptions) (any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, appName, path string, opts LoadOptions) (any, error)

// Load calls f(ctx, appName, path, opts).
func (f LoaderFunc) Load(ctx context.Context, appName, path string, opts LoadOptions) (any, error) {
	return f(ctx, appName, path, opts)
}

// Registry maps base names and extensions to loaders.
type Registry map[string]Loader

// Builtin returns a new registry with the built-in loaders.
func Builtin() Registry {
	y, j := YAML(), JSON()
	return Registry{
		"":                y,
		".yaml":           y,
		".yml":            y,
		".json":           j,
		".toml":           TOML(),
		"package.json":    Subkey(j),
		"sum.config.json": Subkey(j),
	}
}

// With returns a copy of the registry with key bound to l.
func (r Registry) With(key string, l Loader) Registry {
	out := maps.Clone(r)
	if out == nil {
		out = make(Registry, 1)
	}
	out[key] = l
	return out
}

// Keys returns the registered keys, sorted.
func (r Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Selected is a candidate file paired with the loader chosen for it.
type Selected struct {
	Path string
	// Key is the registry key that matched: the base name or extension.
	Key    string
	Loader Loader
}

// Select picks the loader for path: the exact base name first, then the
// extension.
func (r Registry) Select(path string) (Selected, error) {
	base := filepath.Base(path)
	if l, ok := r[base]; ok && l != nil {
		return Selected{Path: path, Key: base, Loader: l}, nil
	}
	ext := Ext(base)
	if l, ok := r[ext]; ok && l != nil {
		return Selected{Path: path, Key: ext, Loader: l}, nil
	}
	return Selected{}, domain.ErrNoLoaderForFile.WithDetails(fmt.Sprintf("%q", path))
}

// Load runs the selected loader and wraps the result as a fragment.
func (s Selected) Load(ctx context.Context, appName string, opts LoadOptions) (merge.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return merge.Fragment{}, err
	}
	v, err := s.Loader.Load(ctx, appName, s.Path, opts)
	if err != nil {
		return merge.Fragment{}, err
	}
	return merge.Fragment{
		AppName: appName,
		Path:    s.Path,
		Loader:  s.Key,
		Value:   v,
	}, nil
}

// LoadFragment selects a loader for path from r and loads it.
func LoadFragment(ctx context.Context, r Registry, appName, path string, opts LoadOptions) (merge.Fragment, error) {
	sel, err := r.Select(path)
	if err != nil {
		return merge.Fragment{}, err
	}
	return sel.Load(ctx, appName, opts)
}

// Ext returns the extension of a file name including the dot. A name
// whose only dot is the leading one, such as ".foorc", has no extension.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}
