package merge

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yndnr/sumconf-go/internal/core/domain"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func combine(t *testing.T, e *Engine, a, b any) any {
	t.Helper()
	got, err := e.Combine(context.Background(), a, b, false)
	if err != nil {
		t.Fatalf("Combine(%v, %v) error = %v", a, b, err)
	}
	return got
}

func TestCombine_Overwrites(t *testing.T) {
	e := newTestEngine()
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want any
	}{
		{"primitive onto primitive", 1, 2, 2},
		{"primitive onto record", map[string]any{"a": 1}, "x", "x"},
		{"null overwrites", 1, nil, nil},
		{"boxed unwraps", "old", boxedString{"new"}, "new"},
		{"time overwrites", when.Add(time.Hour), when, when},
		{"bytes overwrite bytes", []byte("ab"), []byte("cd"), []byte("cd")},
		{"sequence onto primitive", 1, []any{1, 2}, []any{1, 2}},
		{"map onto record", map[string]any{"a": 1}, map[int]string{1: "x"}, map[int]string{1: "x"}},
		{"set onto sequence", []any{1}, NewSet(2), NewSet(2)},
		{"opaque struct", frozen{A: 1}, frozen{A: 2}, frozen{A: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := combine(t, e, tt.a, tt.b); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Combine() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCombine_PointerToPrimitive(t *testing.T) {
	n := 7
	if got := combine(t, newTestEngine(), 1, &n); got != 7 {
		t.Errorf("Combine() = %v, want 7", got)
	}
}

func TestCombine_Sequences(t *testing.T) {
	e := newTestEngine()

	a := []any{1, 2}
	got := combine(t, e, a, []any{3})
	if !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Errorf("Combine() = %v, want [1 2 3]", got)
	}
	if len(a) != 2 {
		t.Error("Combine() modified the previous sequence")
	}

	typed := combine(t, e, []string{"a"}, []string{"b"})
	if !reflect.DeepEqual(typed, []string{"a", "b"}) {
		t.Errorf("Combine() = %#v, want []string{a b}", typed)
	}

	mixed := combine(t, e, []string{"a"}, []int{1})
	if !reflect.DeepEqual(mixed, []any{"a", 1}) {
		t.Errorf("Combine() = %#v, want []any{a 1}", mixed)
	}
}

func TestCombine_Maps(t *testing.T) {
	e := newTestEngine()

	a := map[string]int{"x": 1, "y": 2}
	got := combine(t, e, a, map[string]int{"y": 3, "z": 4})
	want := map[string]int{"x": 1, "y": 3, "z": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Combine() = %v, want %v", got, want)
	}
	if a["y"] != 2 {
		t.Error("Combine() modified the previous map")
	}

	mixed := combine(t, e, map[int]string{1: "a"}, map[string]int{"b": 2})
	if !reflect.DeepEqual(mixed, map[any]any{1: "a", "b": 2}) {
		t.Errorf("Combine() = %#v", mixed)
	}
}

func TestCombine_Sets(t *testing.T) {
	e := newTestEngine()

	got := combine(t, e, NewSet(1, 2), NewSet(2, 3))
	if !reflect.DeepEqual(got, NewSet(1, 2, 3)) {
		t.Errorf("Combine() = %v, want {1 2 3}", got)
	}

	typed := combine(t, e, map[string]struct{}{"a": {}}, map[string]struct{}{"b": {}})
	if !reflect.DeepEqual(typed, map[string]struct{}{"a": {}, "b": {}}) {
		t.Errorf("Combine() = %#v", typed)
	}

	mixed := combine(t, e, map[string]struct{}{"a": {}}, NewSet(1))
	if s, ok := mixed.(Set); !ok || !s.Has("a") || !s.Has(1) {
		t.Errorf("Combine() = %#v, want Set{a 1}", mixed)
	}
}

func TestCombine_Records(t *testing.T) {
	e := newTestEngine()

	a := map[string]any{
		"x":    1,
		"list": []any{"a"},
		"sub":  map[string]any{"keep": true, "over": 1},
	}
	b := map[string]any{
		"y":    2,
		"list": []any{"b"},
		"sub":  map[string]any{"over": 2},
	}

	got := combine(t, e, a, b)
	want := map[string]any{
		"x":    1,
		"y":    2,
		"list": []any{"a", "b"},
		"sub":  map[string]any{"keep": true, "over": 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Combine() = %v, want %v", got, want)
	}

	fresh := combine(t, e, "scalar", map[string]any{"k": "v"})
	if !reflect.DeepEqual(fresh, map[string]any{"k": "v"}) {
		t.Errorf("record onto scalar = %v", fresh)
	}
}

func TestCombine_RecordIsCopied(t *testing.T) {
	e := newTestEngine()
	src := map[string]any{"inner": map[string]any{"a": 1}}

	acc := combine(t, e, nil, src).(map[string]any)
	combine(t, e, acc, map[string]any{"inner": map[string]any{"b": 2}})

	if _, ok := src["inner"].(map[string]any)["b"]; ok {
		t.Error("merging into the accumulator modified a loaded record")
	}
}

func TestCombine_BoxedRecordIsCopied(t *testing.T) {
	e := newTestEngine()
	inner := map[string]any{"a": 1}
	box := boxed{inner}

	acc := combine(t, e, nil, map[string]any{"k": box}).(map[string]any)
	combine(t, e, acc, map[string]any{"k": map[string]any{"b": 2}})

	if len(inner) != 1 {
		t.Errorf("boxed record was modified: %v", inner)
	}
}

type boxed struct{ v any }

func (b boxed) Unbox() any { return b.v }

func TestCombine_Struct(t *testing.T) {
	e := newTestEngine()

	got := combine(t, e, map[string]any{"name": "old", "extra": true}, settings{Name: "svc", Port: 80})
	want := map[string]any{"name": "svc", "port": 80, "extra": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Combine() = %v, want %v", got, want)
	}
}

func TestCombine_Failure(t *testing.T) {
	e := newTestEngine()
	boom := errors.New("boom")

	_, err := e.Combine(context.Background(), map[string]any{}, map[string]any{"a": boom}, false)
	if !errors.Is(err, domain.ErrPropagatedFailure) {
		t.Errorf("error = %v, want ErrPropagatedFailure", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, should wrap the original failure", err)
	}
}

func TestCombine_Deferred(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	double := Func(func(_ context.Context, prev any, _ *Engine, _ bool) (any, error) {
		return prev.(int) * 2, nil
	})
	if got := combine(t, e, 21, double); got != 42 {
		t.Errorf("Func result = %v, want 42", got)
	}

	appendOne := func(prev any) (any, error) {
		return []any{1}, nil
	}
	if got := combine(t, e, []any{0}, appendOne); !reflect.DeepEqual(got, []any{0, 1}) {
		t.Errorf("func(any) result = %v, want [0 1]", got)
	}

	// Deferred chains resolve until a concrete value appears.
	chain := Func(func(context.Context, any, *Engine, bool) (any, error) {
		return Resolved(map[string]any{"b": 2}), nil
	})
	if got := combine(t, e, map[string]any{"a": 1}, chain); !reflect.DeepEqual(got, map[string]any{"a": 1, "b": 2}) {
		t.Errorf("chain result = %v", got)
	}

	async := Go(ctx, func(context.Context) (any, error) { return "later", nil })
	if got := combine(t, e, "now", async); got != "later" {
		t.Errorf("Future result = %v, want later", got)
	}

	failing := Func(func(context.Context, any, *Engine, bool) (any, error) {
		return nil, errors.New("no")
	})
	if _, err := e.Combine(ctx, nil, failing, false); err == nil {
		t.Error("failing Func should abort")
	}
}

func TestFuture_Canceled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := Go(context.Background(), func(context.Context) (any, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Await() error = %v, want context.Canceled", err)
	}
}

type counter struct{ n int }

func (c counter) MergeInto(_ context.Context, prev any, _ *Engine, _ bool) (any, error) {
	if p, ok := prev.(int); ok {
		return p + c.n, nil
	}
	return c.n, nil
}

func TestCombine_Mergeable(t *testing.T) {
	e := newTestEngine()

	got := combine(t, e, map[string]any{"hits": 2}, map[string]any{"hits": counter{3}})
	if !reflect.DeepEqual(got, map[string]any{"hits": 5}) {
		t.Errorf("Combine() = %v, want hits 5", got)
	}
}

func TestCombine_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestEngine().Combine(ctx, nil, 1, false); !errors.Is(err, context.Canceled) {
		t.Errorf("Combine() error = %v, want context.Canceled", err)
	}
}
