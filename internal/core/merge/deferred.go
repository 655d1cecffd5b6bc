package merge

import (
	"context"
	"fmt"
)

// Func is a deferred value computed from the value it is combined onto.
// It receives the previous value and the engine doing the combination;
// its result is combined onto prev in turn.
type Func func(ctx context.Context, prev any, e *Engine, top bool) (any, error)

// Future is a deferred value produced asynchronously.
type Future interface {
	Await(ctx context.Context) (any, error)
}

type future struct {
	done chan struct{}
	val  any
	err  error
}

// Go starts fn in a new goroutine and returns a Future for its result.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) Future {
	f := &future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a Future that is already complete.
func Resolved(v any) Future {
	f := &future{done: make(chan struct{}), val: v}
	close(f.done)
	return f
}

// Await blocks until the value is ready or ctx is done.
func (f *future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve produces the value behind one level of deferral.
func (e *Engine) resolve(ctx context.Context, prev, v any, top bool) (any, error) {
	var (
		out any
		err error
	)
	switch d := v.(type) {
	case Func:
		out, err = d(ctx, prev, e, top)
	case func(context.Context, any, *Engine, bool) (any, error):
		out, err = d(ctx, prev, e, top)
	case func(any) (any, error):
		out, err = d(prev)
	case Future:
		out, err = d.Await(ctx)
	default:
		return nil, fmt.Errorf("merge: %T is not a deferred value", v)
	}
	if err != nil {
		return nil, fmt.Errorf("merge: resolve deferred value: %w", err)
	}
	return out, nil
}
