package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/core/walker"
)

// AppName is the name sumconf gathers its own configuration under.
const AppName = "sumconf"

// Output formats.
const (
	OutputYAML  = "yaml"
	OutputJSON  = "json"
	OutputTable = "table"
)

// Config is the configuration of the sumconf command.
type Config struct {
	// Output is the print format: yaml, json or table.
	Output string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`
	// MetricsFile receives a Prometheus text dump after each command.
	MetricsFile string `koanf:"metrics_file"`
	// WatchInterval is the minimum time between two re-gathers in watch mode.
	WatchInterval time.Duration `koanf:"watch_interval"`

	// Gather settings applied to the target application.
	Source         bool     `koanf:"source"`
	ErrorOnEmpty   bool     `koanf:"error_on_empty"`
	StartDir       string   `koanf:"start_dir"`
	StopDirs       []string `koanf:"stop_dirs"`
	StopPeers      []string `koanf:"stop_peers"`
	Files          []string `koanf:"files"`
	ResetFileNames bool     `koanf:"reset_file_names"`
	IgnoreUser     bool     `koanf:"ignore_user"`
	StopKey        string   `koanf:"stop_key"`
	NoStopKey      bool     `koanf:"no_stop_key"`
	MissingDirs    string   `koanf:"missing_dirs"`
}

// Default returns the default CLI configuration.
func Default() *Config {
	return &Config{
		Output:        OutputYAML,
		LogFormat:     "text",
		WatchInterval: 500 * time.Millisecond,
		MissingDirs:   walker.MissingDirStop.String(),
	}
}

// defaultMap is Default in koanf form.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"output":         d.Output,
		"log_format":     d.LogFormat,
		"watch_interval": d.WatchInterval.String(),
		"missing_dirs":   d.MissingDirs,
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains([]string{OutputYAML, OutputJSON, OutputTable}, c.Output) {
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if c.WatchInterval < 0 {
		return fmt.Errorf("config: negative watch interval %s", c.WatchInterval)
	}
	var p walker.MissingDirPolicy
	if err := p.UnmarshalText([]byte(c.MissingDirs)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// GatherOptions converts the settings into gather options for appName.
// Unset lists stay nil so the gather applies its own defaults.
func (c *Config) GatherOptions(appName string) (service.Options, error) {
	if c.ResetFileNames && len(c.Files) == 0 {
		return service.Options{}, domain.ErrFilesRequired
	}

	var missing walker.MissingDirPolicy
	if err := missing.UnmarshalText([]byte(c.MissingDirs)); err != nil {
		return service.Options{}, fmt.Errorf("config: %w", err)
	}

	opts := service.Options{
		ErrorOnEmpty:   c.ErrorOnEmpty,
		StartDir:       c.StartDir,
		StopDirs:       nonEmpty(c.StopDirs),
		StopPeers:      nonEmpty(c.StopPeers),
		IgnoreUser:     c.IgnoreUser,
		StopKey:        c.StopKey,
		DisableStopKey: c.NoStopKey,
		MissingDirs:    missing,
	}

	switch {
	case c.ResetFileNames:
		opts.FileNames = slices.Clone(c.Files)
	case len(c.Files) > 0:
		opts.FileNames = append(service.FileNames(appName), c.Files...)
	}
	return opts, nil
}

// nonEmpty drops blank entries and returns nil when nothing is left.
func nonEmpty(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitList splits a comma separated flag or environment value.
func splitList(s string) []string {
	return nonEmpty(strings.Split(s, ","))
}
