package tracer

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

type spanKey struct{}

// Span represents one timed phase.
type Span interface {
	End()
	SetAttribute(key string, value any)
	RecordError(err error)
}

// StartSpan starts a span named name, nested under any span already in ctx.
// The returned context carries the new span.
func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	if !logger.DebugEnabled() {
		return ctx, noopSpan{}
	}
	if parent, ok := ctx.Value(spanKey{}).(*span); ok {
		name = parent.name + "." + name
	}
	s := &span{ctx: ctx, name: name, start: time.Now()}
	return context.WithValue(ctx, spanKey{}, s), s
}

// FromContext returns the innermost span in ctx, or a span that records
// nothing.
func FromContext(ctx context.Context) Span {
	if s, ok := ctx.Value(spanKey{}).(*span); ok {
		return s
	}
	return noopSpan{}
}

type span struct {
	ctx   context.Context
	name  string
	start time.Time

	mu    sync.Mutex
	attrs []any
	err   error
	ended bool
}

func (s *span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	args := append([]any{"span", s.name, "duration", time.Since(s.start)}, s.attrs...)
	if s.err != nil {
		args = append(args, "error", s.err)
	}
	s.mu.Unlock()

	logger.L(s.ctx).Debug("span finished", args...)
}

func (s *span) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, key, value)
}

// RecordError keeps the first error only.
func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) SetAttribute(string, any) {}
func (noopSpan) RecordError(error)        {}
