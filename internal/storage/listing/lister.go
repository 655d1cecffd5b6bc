package listing

import (
	"context"
	"os"
)

// Lister reads the entry names of a directory.
//
// A nonexistent directory must be reported with an error satisfying
// errors.Is(err, fs.ErrNotExist).
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, dir string) ([]string, error)

// List calls f(ctx, dir).
func (f ListerFunc) List(ctx context.Context, dir string) ([]string, error) {
	return f(ctx, dir)
}

// OSLister lists directories on the local filesystem.
type OSLister struct{}

// List returns the sorted entry names of dir.
func (OSLister) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
