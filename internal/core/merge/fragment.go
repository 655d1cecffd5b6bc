package merge

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

// Fragment is the value loaded from one candidate file.
//
// A nil Value is the absent fragment: a missing or empty file. Value may
// also be deferred (a Func or Future) as long as it resolves to a record.
type Fragment struct {
	AppName string
	Path    string
	// Loader is the registry key of the loader that produced the value.
	Loader string
	Value  any
}

// MergeInto folds the fragment onto the accumulator prev. It is valid
// only at the top level of a fold.
func (f Fragment) MergeInto(ctx context.Context, prev any, e *Engine, top bool) (any, error) {
	if !top {
		return nil, domain.ErrInvalidState.WithDetails(fmt.Sprintf("fragment %s combined below top level", f.Path))
	}

	acc, ok := prev.(map[string]any)
	if !ok || acc == nil {
		acc = make(map[string]any)
	}

	rec, err := f.record(ctx, acc, e)
	if err != nil {
		return nil, err
	}

	log := e.log(ctx)
	if logger.DebugEnabled() {
		log.Debug("fragment source", "path", f.Path, "loader", f.Loader, "value", logger.Redact(rec))
	}

	if e.stopKey != "" {
		if stop, ok := rec[e.stopKey].(bool); ok && stop {
			log.Debug("discarding previous values", "path", f.Path, "stop_key", e.stopKey)
			acc = make(map[string]any, len(rec))
			clear(e.sources)
			e.base = f.Path
		}
	}

	for _, k := range slices.Sorted(maps.Keys(rec)) {
		e.sources[k] = f.Path
		v, err := e.Combine(ctx, acc[k], rec[k], false)
		if err != nil {
			return nil, err
		}
		acc[k] = v
	}

	if logger.DebugEnabled() {
		log.Debug("combined", "value", logger.Redact(acc))
	}
	return acc, nil
}

// record resolves the fragment value down to a record, or nil when absent.
func (f Fragment) record(ctx context.Context, acc map[string]any, e *Engine) (map[string]any, error) {
	v := f.Value
	for Classify(v) == KindDeferred {
		var err error
		if v, err = e.resolve(ctx, acc, v, false); err != nil {
			return nil, fmt.Errorf("fragment %s: %w", f.Path, err)
		}
	}

	switch k := Classify(v); k {
	case KindNull:
		return nil, nil
	case KindRecord:
		return toRecord(v)
	case KindFailure:
		return nil, domain.ErrPropagatedFailure.WithDetails(f.Path).WithCause(v.(error))
	default:
		return nil, domain.ErrInvalidFragmentShape.WithDetails(fmt.Sprintf("%s holds a %s", f.Path, k))
	}
}
