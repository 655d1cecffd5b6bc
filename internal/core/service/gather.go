package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/core/merge"
	"github.com/yndnr/sumconf-go/internal/core/walker"
	"github.com/yndnr/sumconf-go/internal/infra/confloader"
	"github.com/yndnr/sumconf-go/internal/storage/listing"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
	"github.com/yndnr/sumconf-go/internal/telemetry/metric"
	"github.com/yndnr/sumconf-go/internal/telemetry/tracer"
)

// Result is the outcome of a gather.
type Result struct {
	// ID identifies the gather in logs.
	ID string
	// Value is the combined configuration. Never nil.
	Value map[string]any
	// Candidates lists every file considered, nearest first.
	Candidates []string
	// Files lists the candidates that produced a fragment, nearest first.
	Files []string
	// Visited lists the directories searched by the walk. Empty when an
	// explicit directory list was given.
	Visited []string
	// Base is the file whose stop key discarded everything farther, or
	// empty when no stop key was seen.
	Base string
	// Warnings holds non-fatal problems such as a suspect app name.
	Warnings []error

	sources map[string]string
}

// Source returns the file that last set the top-level key.
func (r *Result) Source(key string) (string, bool) {
	p, ok := r.sources[key]
	return p, ok
}

// Sources returns a copy of the key to file provenance map.
func (r *Result) Sources() map[string]string {
	return maps.Clone(r.sources)
}

// Gatherer finds, loads and combines configuration files.
type Gatherer struct {
	cache   *listing.Cache
	walker  *walker.Walker
	metrics *metric.Registry
	logger  logger.Logger
}

// Option configures the Gatherer.
type Option func(*Gatherer)

// WithCache sets the listing cache shared by walks.
func WithCache(c *listing.Cache) Option {
	return func(g *Gatherer) {
		g.cache = c
	}
}

// WithWalker replaces the directory walker.
func WithWalker(w *walker.Walker) Option {
	return func(g *Gatherer) {
		g.walker = w
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metric.Registry) Option {
	return func(g *Gatherer) {
		g.metrics = r
	}
}

// WithLogger sets the default logger for gathers.
func WithLogger(l logger.Logger) Option {
	return func(g *Gatherer) {
		g.logger = l
	}
}

// NewGatherer creates a new Gatherer.
func NewGatherer(opts ...Option) *Gatherer {
	g := &Gatherer{}
	for _, opt := range opts {
		opt(g)
	}

	if g.cache == nil {
		g.cache = listing.Default()
	}
	if g.walker == nil {
		g.walker = walker.New(walker.WithCache(g.cache))
	}
	return g
}

// Cache returns the listing cache used by the gatherer.
func (g *Gatherer) Cache() *listing.Cache {
	return g.cache
}

// ClearCache drops every cached directory listing.
func (g *Gatherer) ClearCache() {
	g.cache.Clear()
}

// Gather collects the configuration for appName.
func (g *Gatherer) Gather(ctx context.Context, appName string, opts Options) (res *Result, err error) {
	start := time.Now()
	id := ulid.Make().String()

	log := opts.Logger
	if log == nil {
		log = g.logger
	}
	if log == nil {
		log = logger.FromContext(ctx)
	}
	ctx = logger.WithGatherID(logger.WithLogger(ctx, log), id)
	log = logger.L(ctx).With("app", appName)

	defer func() {
		outcome := metric.OutcomeOK
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			outcome = metric.OutcomeCanceled
		case err != nil:
			outcome = metric.OutcomeError
		}
		g.metrics.GatherDone(outcome, time.Since(start))
	}()

	// 1. Validate the application name
	suspect, err := ValidateAppName(appName)
	if err != nil {
		return nil, err
	}
	var warnings []error
	if suspect {
		w := domain.ErrSuspectAppName.WithDetails(strconv.Quote(appName))
		log.Warn("suspect app name", "error", w)
		warnings = append(warnings, w)
	}

	// 2. Fill in defaults
	opts = opts.withDefaults(Defaults(appName))

	// 3. Find candidate files
	candidates, visited, err := g.candidates(ctx, appName, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("gather started", "candidates", len(candidates))

	// 4. Select a loader for every candidate before reading any of them
	selected := make([]confloader.Selected, len(candidates))
	for i, path := range candidates {
		if selected[i], err = opts.Loaders.Select(path); err != nil {
			return nil, err
		}
	}

	// 5. Load concurrently
	fragments, err := g.load(ctx, appName, selected, confloader.LoadOptions{ErrorOnEmpty: opts.ErrorOnEmpty})
	if err != nil {
		return nil, err
	}

	// 6. Fold farthest first so nearer files win
	engine := merge.New(opts.engineOptions()...)
	acc, err := fold(ctx, engine, fragments)
	if err != nil {
		return nil, err
	}

	res = &Result{
		ID:         id,
		Value:      acc.(map[string]any),
		Candidates: candidates,
		Visited:    visited,
		Base:       engine.Base(),
		Warnings:   warnings,
		sources:    engine.Sources(),
	}
	for _, f := range fragments {
		if f.Value != nil {
			res.Files = append(res.Files, f.Path)
		}
	}

	log.Debug("gather finished",
		"files", len(res.Files),
		"base", res.Base,
		"duration", time.Since(start),
	)
	return res, nil
}

// candidates lists the files to consider, nearest first.
func (g *Gatherer) candidates(ctx context.Context, appName string, opts Options) ([]string, []string, error) {
	if opts.Dirs == nil {
		ctx, span := tracer.StartSpan(ctx, "walk")
		defer span.End()

		walked, err := g.walker.Walk(ctx, appName, opts.walkOptions())
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		span.SetAttribute("dirs", len(walked.Visited))
		return walked.Paths(), walked.Visited, nil
	}

	paths := make([]string, 0, len(opts.Dirs)*len(opts.FileNames))
	for _, dir := range opts.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("service: resolve %q: %w", dir, err)
		}
		for _, name := range opts.FileNames {
			paths = append(paths, filepath.Join(abs, name))
		}
	}
	return paths, nil, nil
}

// load reads every selected file. The result keeps the input order.
func (g *Gatherer) load(ctx context.Context, appName string, selected []confloader.Selected, opts confloader.LoadOptions) ([]merge.Fragment, error) {
	ctx, span := tracer.StartSpan(ctx, "load")
	defer span.End()
	span.SetAttribute("files", len(selected))

	fragments := make([]merge.Fragment, len(selected))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, sel := range selected {
		eg.Go(func() error {
			f, err := sel.Load(egCtx, appName, opts)
			if err != nil {
				return err
			}
			if f.Value != nil {
				g.metrics.FragmentLoaded(f.Loader)
			}
			fragments[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return fragments, nil
}

// fold combines fragments into one map, farthest first.
func fold(ctx context.Context, engine *merge.Engine, fragments []merge.Fragment) (any, error) {
	_, span := tracer.StartSpan(ctx, "fold")
	defer span.End()

	var acc any = map[string]any{}
	for i := len(fragments) - 1; i >= 0; i-- {
		var err error
		if acc, err = engine.Combine(ctx, acc, fragments[i], true); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	span.SetAttribute("base", engine.Base())
	return acc, nil
}
