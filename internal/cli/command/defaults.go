package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/sumconf-go/internal/core/service"
)

// DefaultsCommand returns the defaults command.
func DefaultsCommand() *cli.Command {
	return &cli.Command{
		Name:      "defaults",
		Usage:     "Print the default gather options for a package",
		ArgsUsage: "<packageName>",
		Action:    defaultsAction,
	}
}

func defaultsAction(c *cli.Context) error {
	appName, err := packageName(c)
	if err != nil {
		return err
	}
	st, err := setup(c)
	if err != nil {
		return err
	}
	return st.formatter().Format(st.stdout, defaultsView(service.Defaults(appName)))
}

// defaultsView renders options as plain data. Loaders are listed by key.
func defaultsView(opts service.Options) map[string]any {
	return map[string]any{
		"error_on_empty":   opts.ErrorOnEmpty,
		"loaders":          opts.Loaders.Keys(),
		"start_dir":        opts.StartDir,
		"stop_dirs":        opts.StopDirs,
		"stop_peers":       opts.StopPeers,
		"file_names":       opts.FileNames,
		"ignore_user":      opts.IgnoreUser,
		"stop_key":         opts.StopKey,
		"disable_stop_key": opts.DisableStopKey,
		"missing_dirs":     opts.MissingDirs.String(),
	}
}
