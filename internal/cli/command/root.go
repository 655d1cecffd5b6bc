package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sumconf-go/internal/cli/config"
	"github.com/yndnr/sumconf-go/internal/cli/output"
	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/core/walker"
	"github.com/yndnr/sumconf-go/internal/infra/buildinfo"
	"github.com/yndnr/sumconf-go/internal/storage/listing"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
	"github.com/yndnr/sumconf-go/internal/telemetry/metric"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 3
)

const stateKey = "state"

// App creates the CLI application writing to the process streams.
func App() *cli.App {
	return NewApp(os.Stdout, os.Stderr)
}

// NewApp creates the CLI application with the given output streams.
// Errors are returned from Run rather than exiting the process.
func NewApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "sumconf",
		Usage:     "Gather and combine configuration files from a directory hierarchy",
		UsageText: "sumconf [global options] [command] [options] <packageName>",
		Version:   buildinfo.String(),
		// -v is verbose; the version flag is declared in globalFlags.
		HideVersion: true,
		Flags:       append(globalFlags(), gatherFlags()...),
		// A bare package name runs get.
		Action: rootAction,
		Commands: []*cli.Command{
			GetCommand(),
			DefaultsCommand(),
			WatchCommand(),
		},
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  make(map[string]any),
		// Exit codes are decided by ExitCode in main.
		ExitErrHandler: func(*cli.Context, error) {},
		After: func(c *cli.Context) error {
			st := getState(c)
			if st == nil || st.cfg.MetricsFile == "" {
				return nil
			}
			if err := st.metrics.WriteTextfile(st.cfg.MetricsFile); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			return nil
		},
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Turn on diagnostic logging",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: yaml, json, table",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Read CLI settings from this YAML file",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file after the command",
		},
		&cli.BoolFlag{
			Name:  "version",
			Usage: "Print the version",
		},
	}
}

func rootAction(c *cli.Context) error {
	if c.Bool("version") {
		_, err := fmt.Fprintf(c.App.Writer, "%s version %s\n", c.App.Name, c.App.Version)
		return err
	}
	return getAction(c)
}

// gatherFlags are shared by get and watch.
func gatherFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Group the output by the file that set each key",
		},
		&cli.BoolFlag{
			Name:    "error-on-empty",
			Aliases: []string{"e"},
			Usage:   "Fail if a config file exists but is empty",
		},
		&cli.StringFlag{
			Name:  "start-dir",
			Usage: "Where to start searching from (default: current working directory)",
		},
		&cli.StringSliceFlag{
			Name:  "stop-dirs",
			Usage: "Stop searching when one of these comma-separated directories is reached (default: home directory)",
		},
		&cli.StringSliceFlag{
			Name:  "stop-peers",
			Usage: "Stop searching in a directory containing one of these comma-separated names",
		},
		&cli.StringSliceFlag{
			Name:    "files",
			Aliases: []string{"f"},
			Usage:   "Add these comma-separated file names to the list to be searched",
		},
		&cli.BoolFlag{
			Name:    "reset-file-names",
			Aliases: []string{"R"},
			Usage:   "Search only the names given with -f",
		},
		&cli.BoolFlag{
			Name:  "ignore-user",
			Usage: "Skip the per-user configuration directory",
		},
		&cli.StringFlag{
			Name:  "stop-key",
			Usage: "Top-level key that discards configuration from farther files",
		},
		&cli.BoolFlag{
			Name:  "no-stop-key",
			Usage: "Disable stop key handling",
		},
		&cli.BoolFlag{
			Name:  "skip-missing-dirs",
			Usage: "Keep walking upward past directories that do not exist",
		},
	}
}

// Flags that override configuration keys, by value type.
var (
	boolFlagKeys = map[string]string{
		"verbose":          "verbose",
		"source":           "source",
		"error-on-empty":   "error_on_empty",
		"reset-file-names": "reset_file_names",
		"ignore-user":      "ignore_user",
		"no-stop-key":      "no_stop_key",
	}
	stringFlagKeys = map[string]string{
		"output":       "output",
		"log-format":   "log_format",
		"metrics-file": "metrics_file",
		"start-dir":    "start_dir",
		"stop-key":     "stop_key",
	}
	listFlagKeys = map[string]string{
		"stop-dirs":  "stop_dirs",
		"stop-peers": "stop_peers",
		"files":      "files",
	}
)

// flagValues collects the flags set on the command line as configuration
// overrides. Gather flags exist on the root and on each command, so every
// context of the lineage is read, innermost last.
func flagValues(c *cli.Context) map[string]any {
	values := make(map[string]any)
	for _, ctx := range slices.Backward(c.Lineage()) {
		for name, key := range boolFlagKeys {
			if ctx.IsSet(name) {
				values[key] = ctx.Bool(name)
			}
		}
		for name, key := range stringFlagKeys {
			if ctx.IsSet(name) {
				values[key] = ctx.String(name)
			}
		}
		for name, key := range listFlagKeys {
			if ctx.IsSet(name) {
				values[key] = ctx.StringSlice(name)
			}
		}
		if ctx.IsSet("interval") {
			values["watch_interval"] = ctx.Duration("interval").String()
		}
		if ctx.IsSet("skip-missing-dirs") && ctx.Bool("skip-missing-dirs") {
			values["missing_dirs"] = walker.MissingDirSkip.String()
		}
	}
	return values
}

// state is what a command run shares with the After hook.
type state struct {
	cfg      *config.Config
	gatherer *service.Gatherer
	metrics  *metric.Registry
	log      logger.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func getState(c *cli.Context) *state {
	st, _ := c.App.Metadata[stateKey].(*state)
	return st
}

// setup loads the CLI configuration and builds the gatherer for a run.
func setup(c *cli.Context) (*state, error) {
	// 1. Bootstrap logger so the self-gather can be diagnosed
	level := "info"
	if c.Bool("verbose") || logger.DebugRequested() {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: c.String("log-format"), Output: c.App.ErrWriter})
	if err != nil {
		return nil, err
	}
	ctx := logger.WithLogger(runContext(c), log)

	// 2. Metrics and the shared listing cache
	metrics := metric.NewRegistry()
	cache := listing.New(listing.WithMetrics(metrics))
	metrics.MustRegister(cache.Collector())
	gatherer := service.NewGatherer(
		service.WithCache(cache),
		service.WithMetrics(metrics),
		service.WithLogger(log),
	)

	// 3. Layered CLI configuration
	cfg := config.Default()
	loader := config.NewLoader(
		config.WithConfigFile(c.String("config")),
		config.WithGatherer(gatherer),
	)
	if err := loader.Load(ctx, flagValues(c), cfg); err != nil {
		return nil, err
	}

	// 4. Rebuild the logger if the configuration changed it
	if cfg.Verbose {
		level = "debug"
	}
	if log, err = logger.New(logger.Config{Level: level, Format: cfg.LogFormat, Output: c.App.ErrWriter}); err != nil {
		return nil, err
	}

	st := &state{
		cfg:      cfg,
		gatherer: gatherer,
		metrics:  metrics,
		log:      log,
		stdout:   c.App.Writer,
		stderr:   c.App.ErrWriter,
	}
	c.App.Metadata[stateKey] = st
	return st, nil
}

// context returns the run context carrying the logger.
func (st *state) context(c *cli.Context) context.Context {
	return logger.WithLogger(runContext(c), st.log)
}

func runContext(c *cli.Context) context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// gatherOptions converts the configuration into options for appName.
func (st *state) gatherOptions(appName string) (service.Options, error) {
	opts, err := st.cfg.GatherOptions(appName)
	if err != nil {
		return opts, err
	}
	opts.Logger = st.log
	return opts, nil
}

func (st *state) formatter() output.Formatter {
	format, err := output.ParseFormat(st.cfg.Output)
	if err != nil {
		format = output.FormatYAML
	}
	return output.NewFormatter(format)
}

// packageName returns the required <packageName> argument. Flags written
// after the package name are applied as if they came before it.
func packageName(c *cli.Context) (string, error) {
	args, err := trailingFlags(c)
	if err != nil {
		return "", err
	}
	if len(args) < 1 {
		return "", cli.Exit("missing <packageName> argument", ExitUsage)
	}
	if len(args) > 1 {
		return "", cli.Exit(fmt.Sprintf("unexpected arguments: %v", args[1:]), ExitUsage)
	}
	return args[0], nil
}

// trailingFlags sets the flags left in the positional arguments, which the
// flag parser stops reading at the first non-flag, and returns the rest.
// Everything after "--" is positional.
func trailingFlags(c *cli.Context) ([]string, error) {
	tail := c.Args().Slice()
	var positional []string
	for i := 0; i < len(tail); i++ {
		tok := tail[i]
		if tok == "--" {
			positional = append(positional, tail[i+1:]...)
			break
		}
		if len(tok) < 2 || tok[0] != '-' {
			positional = append(positional, tok)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		f := lookupFlag(c, name)
		if f == nil {
			return nil, cli.Exit(fmt.Sprintf("flag provided but not defined: %s", tok), ExitUsage)
		}
		if !hasValue {
			if _, ok := f.(*cli.BoolFlag); ok {
				value = "true"
			} else {
				if i+1 >= len(tail) {
					return nil, cli.Exit(fmt.Sprintf("flag needs an argument: %s", tok), ExitUsage)
				}
				i++
				value = tail[i]
			}
		}
		if err := c.Set(f.Names()[0], value); err != nil {
			return nil, cli.Exit(fmt.Sprintf("invalid value %q for flag %s: %v", value, tok, err), ExitUsage)
		}
	}
	return positional, nil
}

// lookupFlag finds the flag named name, or one of its aliases, on the
// running command or the app.
func lookupFlag(c *cli.Context, name string) cli.Flag {
	var flags []cli.Flag
	if c.Command != nil {
		flags = append(flags, c.Command.Flags...)
	}
	flags = append(flags, c.App.Flags...)
	for _, f := range flags {
		if slices.Contains(f.Names(), name) {
			return f
		}
	}
	return nil
}

// ExitCode maps an error returned by App().Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, domain.ErrFilesRequired) {
		return ExitUsage
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitError
}
