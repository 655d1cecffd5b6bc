// Package shutdown coordinates orderly termination of long-running commands.
//
// WithSignals derives a context that is canceled on SIGINT or SIGTERM.
// Handler collects cleanup hooks and runs them once, newest first, under a
// deadline:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
//	h := shutdown.NewHandler(time.Second)
//	defer h.Shutdown()
//	h.OnShutdown(func(context.Context) error { return w.Stop() })
//	<-ctx.Done()
package shutdown
