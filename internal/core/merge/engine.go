package merge

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

// DefaultStopKey is the top-level key that, when true in a fragment,
// discards everything folded before that fragment.
const DefaultStopKey = "root"

// Engine combines values and records provenance for one fold.
// It is not safe for concurrent use.
type Engine struct {
	stopKey string
	logger  logger.Logger

	sources map[string]string
	base    string
}

// Option configures the Engine.
type Option func(*Engine)

// WithStopKey sets the stop key. An empty key disables stop handling.
func WithStopKey(key string) Option {
	return func(e *Engine) {
		e.stopKey = key
	}
}

// WithoutStopKey disables stop handling.
func WithoutStopKey() Option {
	return WithStopKey("")
}

// WithLogger sets the logger for fold diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with an empty provenance table.
func New(opts ...Option) *Engine {
	e := &Engine{
		stopKey: DefaultStopKey,
		sources: make(map[string]string),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// StopKey returns the configured stop key, "" when disabled.
func (e *Engine) StopKey() string {
	return e.stopKey
}

// Source returns the path of the last folded fragment that set the
// top-level key.
func (e *Engine) Source(key string) (string, bool) {
	src, ok := e.sources[key]
	return src, ok
}

// Sources returns a copy of the provenance table.
func (e *Engine) Sources() map[string]string {
	return maps.Clone(e.sources)
}

// Base returns the path of the fragment that last reset the accumulator,
// or "" if no reset happened.
func (e *Engine) Base() string {
	return e.base
}

// Combine merges b onto a. top is true only when b is a whole fragment.
//
// Records reachable from a may be modified in place; every other
// collection result is newly allocated. Callers that fold into a value
// they still use elsewhere should pass a copy.
func (e *Engine) Combine(ctx context.Context, a, b any, top bool) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch Classify(b) {
	case KindNull, KindPrimitive, KindOpaque:
		return b, nil

	case KindFailure:
		err := b.(error)
		if errors.Is(err, domain.ErrPropagatedFailure) {
			return nil, err
		}
		return nil, domain.ErrPropagatedFailure.WithCause(err)

	case KindBoxed:
		// Combining onto nil copies records so the engine never mutates
		// a map it does not own.
		return e.Combine(ctx, nil, unbox(b), false)

	case KindSequence:
		if Classify(a) != KindSequence {
			return b, nil
		}
		return concatSequences(a, b), nil

	case KindMap:
		if Classify(a) != KindMap {
			return b, nil
		}
		return unionMaps(a, b), nil

	case KindSet:
		if Classify(a) != KindSet {
			return b, nil
		}
		return unionSets(a, b), nil

	case KindDeferred:
		v, err := e.resolve(ctx, a, b, top)
		if err != nil {
			return nil, err
		}
		return e.Combine(ctx, a, v, false)

	case KindMergeable:
		return b.(Mergeable).MergeInto(ctx, a, e, top)

	default: // KindRecord
		rec, err := toRecord(b)
		if err != nil {
			return nil, err
		}
		return e.mergeRecord(ctx, a, rec)
	}
}

// mergeRecord combines every key of b onto a, in sorted key order.
// A non-record a is replaced by a new record.
func (e *Engine) mergeRecord(ctx context.Context, a any, b map[string]any) (map[string]any, error) {
	acc, ok := a.(map[string]any)
	if !ok || acc == nil {
		acc = make(map[string]any, len(b))
	}

	for _, k := range slices.Sorted(maps.Keys(b)) {
		v, err := e.Combine(ctx, acc[k], b[k], false)
		if err != nil {
			return nil, err
		}
		acc[k] = v
	}
	return acc, nil
}

func (e *Engine) log(ctx context.Context) logger.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logger.L(ctx)
}
