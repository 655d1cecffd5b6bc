package sumconf

import (
	"context"
	"sync"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/core/merge"
	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/core/walker"
	"github.com/yndnr/sumconf-go/internal/infra/confloader"
	"github.com/yndnr/sumconf-go/internal/storage/listing"
)

type (
	// Options controls a gather.
	Options = service.Options
	// Result is the outcome of a gather.
	Result = service.Result

	// Loader reads one candidate file.
	Loader = confloader.Loader
	// LoaderFunc adapts a function to Loader.
	LoaderFunc = confloader.LoaderFunc
	// LoadOptions are the options a Loader honors.
	LoadOptions = confloader.LoadOptions
	// Registry maps base names and extensions to loaders.
	Registry = confloader.Registry

	// MissingDirPolicy decides what a nonexistent directory does to a walk.
	MissingDirPolicy = walker.MissingDirPolicy

	// Engine folds configuration values together.
	Engine = merge.Engine
	// Func is a deferred value computed from the value it replaces.
	Func = merge.Func
	// Mergeable values decide how they combine with the previous value.
	Mergeable = merge.Mergeable
	// Set is an unordered collection combined by union.
	Set = merge.Set

	// ParseError reports malformed content in a configuration file.
	ParseError = domain.ParseError
)

const (
	MissingDirStop = walker.MissingDirStop
	MissingDirSkip = walker.MissingDirSkip
)

// Errors, matched with errors.Is.
var (
	ErrInvalidAppName       = domain.ErrInvalidAppName
	ErrSuspectAppName       = domain.ErrSuspectAppName
	ErrNoLoaderForFile      = domain.ErrNoLoaderForFile
	ErrEmptyFile            = domain.ErrEmptyFile
	ErrInvalidFragmentShape = domain.ErrInvalidFragmentShape
	ErrParse                = domain.ErrParse
	ErrPropagatedFailure    = domain.ErrPropagatedFailure
)

var defaultGatherer = sync.OnceValue(func() *service.Gatherer {
	return service.NewGatherer()
})

// Gather collects the configuration for appName. Zero option fields take
// their values from Defaults.
func Gather(ctx context.Context, appName string, opts Options) (*Result, error) {
	return defaultGatherer().Gather(ctx, appName, opts)
}

// Defaults returns the default options for appName.
func Defaults(appName string) Options {
	return service.Defaults(appName)
}

// FileNames returns the default candidate file names for appName.
func FileNames(appName string) []string {
	return service.FileNames(appName)
}

// ClearCaches drops every cached directory listing.
func ClearCaches() {
	listing.ClearDefault()
}

// BuiltinLoaders returns a fresh copy of the default loader registry.
func BuiltinLoaders() Registry {
	return confloader.Builtin()
}

// YAML returns the YAML loader.
func YAML() Loader { return confloader.YAML() }

// JSON returns the JSON loader.
func JSON() Loader { return confloader.JSON() }

// TOML returns the TOML loader.
func TOML() Loader { return confloader.TOML() }

// Subkey wraps inner so that only the appName key of the document is used.
func Subkey(inner Loader) Loader { return confloader.Subkey(inner) }

// Static returns a loader that yields v for any existing file.
func Static(v any) Loader { return confloader.Static(v) }
