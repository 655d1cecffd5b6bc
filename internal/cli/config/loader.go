package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "SUMCONF_"

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"stop_dirs":  true,
	"stop_peers": true,
	"files":      true,
}

// Loader loads the CLI configuration from all layers.
type Loader struct {
	k          *koanf.Koanf
	envPrefix  string
	filePath   string
	gatherer   *service.Gatherer
	selfOpts   service.Options
	selfGather bool
	loaded     bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithGatherer sets the gatherer used for the self-gather.
func WithGatherer(g *service.Gatherer) Option {
	return func(l *Loader) {
		l.gatherer = g
	}
}

// WithSelfOptions sets the options of the self-gather.
func WithSelfOptions(opts service.Options) Option {
	return func(l *Loader) {
		l.selfOpts = opts
	}
}

// WithoutSelfGather skips the self-gather layer.
func WithoutSelfGather() Option {
	return func(l *Loader) {
		l.selfGather = false
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:          koanf.New("."),
		envPrefix:  DefaultEnvPrefix,
		selfGather: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.gatherer == nil && l.selfGather {
		l.gatherer = service.NewGatherer()
	}
	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Built-in defaults
//  2. Self-gather of the sumconf application
//  3. Configuration file (YAML)
//  4. Environment variables
//  5. Flags
func (l *Loader) Load(ctx context.Context, flags map[string]any, target *Config) error {
	if err := l.LoadMap(defaultMap()); err != nil {
		return err
	}

	if l.selfGather {
		if err := l.LoadSelf(ctx); err != nil {
			return err
		}
	}

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return err
	}

	if len(flags) > 0 {
		if err := l.LoadMap(flags); err != nil {
			return err
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := target.Validate(); err != nil {
		return err
	}

	l.loaded = true
	return nil
}

// LoadSelf gathers the sumconf application's own configuration files.
func (l *Loader) LoadSelf(ctx context.Context) error {
	res, err := l.gatherer.Gather(ctx, AppName, l.selfOpts)
	if err != nil {
		return fmt.Errorf("gather %s configuration: %w", AppName, err)
	}
	if len(res.Files) > 0 {
		logger.L(ctx).Debug("self configuration", "files", res.Files)
	}
	return l.LoadMap(res.Value)
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads configuration from environment variables.
// SUMCONF_STOP_PEERS=.git,.svn becomes stop_peers: [.git .svn].
// The diagnostic switch SUMCONF_DEBUG is not a setting and is skipped.
func (l *Loader) LoadEnv() error {
	cb := func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, l.envPrefix))
		if key == "debug" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}

	if err := l.k.Load(env.ProviderWithValue(l.envPrefix, ".", cb), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// LoadMap loads configuration from a map.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns a value from the configuration by key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// All returns all configuration as a map.
func (l *Loader) All() map[string]any {
	return l.k.All()
}
