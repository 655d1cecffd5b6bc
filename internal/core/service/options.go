package service

import (
	"os"

	"github.com/yndnr/sumconf-go/internal/core/merge"
	"github.com/yndnr/sumconf-go/internal/core/walker"
	"github.com/yndnr/sumconf-go/internal/infra/confloader"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

// DefaultStopPeers are the entries that mark the top of a project.
var DefaultStopPeers = []string{".git", ".hg"}

// Options controls a gather. Zero fields take their value from Defaults;
// a non-nil empty slice means "none" rather than "default".
type Options struct {
	// ErrorOnEmpty fails the gather on a zero-length candidate file.
	ErrorOnEmpty bool `koanf:"error_on_empty"`
	// Loaders maps base names and extensions to loaders.
	Loaders confloader.Registry `koanf:"-"`
	// StartDir is where the walk starts. Defaults to the working directory.
	StartDir string `koanf:"start_dir"`
	// StopDirs end the walk after they are searched. Defaults to the
	// user's home directory.
	StopDirs []string `koanf:"stop_dirs"`
	// StopPeers end the walk after a directory containing one of them.
	StopPeers []string `koanf:"stop_peers"`
	// Dirs replaces the walk with an explicit list, nearest first.
	Dirs []string `koanf:"dirs"`
	// FileNames are the candidate names, in order, within each directory.
	FileNames []string `koanf:"file_names"`
	// IgnoreUser skips the per-user configuration directory.
	IgnoreUser bool `koanf:"ignore_user"`
	// StopKey names the top-level key that discards farther fragments.
	StopKey string `koanf:"stop_key"`
	// DisableStopKey turns stop key handling off.
	DisableStopKey bool `koanf:"disable_stop_key"`
	// MissingDirs decides whether a nonexistent directory ends the walk.
	MissingDirs walker.MissingDirPolicy `koanf:"missing_dirs"`
	// Logger overrides the gatherer's logger for this gather.
	Logger logger.Logger `koanf:"-"`
}

// FileNames returns the default candidate file names for appName, in
// the order they are searched within a directory.
func FileNames(appName string) []string {
	if appName == "" {
		return []string{}
	}
	return []string{
		"." + appName + "rc",
		"." + appName + "rc.json",
		"." + appName + "rc.yml",
		"." + appName + "rc.yaml",
		"." + appName + "rc.toml",
		appName + ".config.yml",
		appName + ".config.yaml",
		appName + ".config.json",
		appName + ".config.toml",
		"sum.config.json",
		"package.json",
	}
}

// Defaults returns the default options for appName.
func Defaults(appName string) Options {
	opts := Options{
		StopDirs:  []string{},
		StopPeers: append([]string(nil), DefaultStopPeers...),
		FileNames: FileNames(appName),
		StopKey:   merge.DefaultStopKey,
		Loaders:   confloader.Builtin(),
	}
	if wd, err := os.Getwd(); err == nil {
		opts.StartDir = wd
	}
	if home, err := os.UserHomeDir(); err == nil {
		opts.StopDirs = []string{home}
	}
	return opts
}

// withDefaults fills the zero fields of o from d.
func (o Options) withDefaults(d Options) Options {
	if o.Loaders == nil {
		o.Loaders = d.Loaders
	}
	if o.StartDir == "" {
		o.StartDir = d.StartDir
	}
	if o.StopDirs == nil {
		o.StopDirs = d.StopDirs
	}
	if o.StopPeers == nil {
		o.StopPeers = d.StopPeers
	}
	if o.FileNames == nil {
		o.FileNames = d.FileNames
	}
	if o.StopKey == "" {
		o.StopKey = d.StopKey
	}
	return o
}

func (o Options) engineOptions() []merge.Option {
	if o.DisableStopKey {
		return []merge.Option{merge.WithoutStopKey()}
	}
	return []merge.Option{merge.WithStopKey(o.StopKey)}
}

func (o Options) walkOptions() walker.Options {
	return walker.Options{
		StartDir:    o.StartDir,
		StopDirs:    o.StopDirs,
		StopPeers:   o.StopPeers,
		FileNames:   o.FileNames,
		IgnoreUser:  o.IgnoreUser,
		MissingDirs: o.MissingDirs,
	}
}
