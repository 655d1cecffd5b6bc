package command

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/infra/confloader"
	"github.com/yndnr/sumconf-go/internal/infra/shutdown"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	flags := append(gatherFlags(), &cli.DurationFlag{
		Name:  "interval",
		Usage: "Minimum time between two gathers (default: 500ms)",
	})
	return &cli.Command{
		Name:      "watch",
		Usage:     "Print the combined configuration again whenever it changes",
		ArgsUsage: "<packageName>",
		Flags:     flags,
		Action:    watchAction,
	}
}

func watchAction(c *cli.Context) error {
	appName, err := packageName(c)
	if err != nil {
		return err
	}
	st, err := setup(c)
	if err != nil {
		return err
	}
	opts, err := st.gatherOptions(appName)
	if err != nil {
		return err
	}

	ctx, stop := shutdown.WithSignals(st.context(c))
	defer stop()
	return st.watch(ctx, appName, opts)
}

// watch gathers and prints, then does so again after every change in a
// searched directory until ctx is done. Only the first gather is fatal.
func (st *state) watch(ctx context.Context, appName string, opts service.Options) error {
	h := shutdown.NewHandler(shutdown.DefaultTimeout)
	defer func() {
		if err := h.Shutdown(); err != nil {
			st.log.Warn("shutdown incomplete", "error", err)
		}
	}()

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(st.log))
	if err != nil {
		return err
	}
	h.OnShutdown(func(context.Context) error { return w.Stop() })

	changes := make(chan struct{}, 1)
	w.OnChange(func(string) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	w.StartAsync()

	gather := func() error {
		res, err := st.gatherer.Gather(ctx, appName, opts)
		if err != nil {
			return err
		}
		for _, dir := range watchDirs(res) {
			if err := w.WatchDir(dir); err != nil {
				st.log.Debug("directory not watched", "path", dir, "error", err)
			}
		}
		return st.print(res)
	}

	if err := gather(); err != nil {
		return err
	}
	st.log.Info("watching for changes", "app", appName, "dirs", len(w.Dirs()))

	limiter := rate.NewLimiter(rate.Every(st.cfg.WatchInterval), 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			st.gatherer.ClearCache()
			if err := gather(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				st.log.Error("gather failed", "app", appName, "error", err)
			}
		}
	}
}

// watchDirs lists the directories whose changes can alter a gather: the
// walked directories, or the directories of the explicit candidates.
func watchDirs(res *service.Result) []string {
	if len(res.Visited) > 0 {
		return res.Visited
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range res.Candidates {
		if d := filepath.Dir(p); !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
