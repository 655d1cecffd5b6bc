package merge

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"time"
)

// Kind is the structural category that selects a combination rule.
type Kind int

const (
	KindNull Kind = iota
	KindPrimitive
	KindSequence
	KindMap
	KindSet
	KindBoxed
	KindDeferred
	KindMergeable
	KindRecord
	KindOpaque
	KindFailure
)

var kindNames = [...]string{
	KindNull:      "null",
	KindPrimitive: "primitive",
	KindSequence:  "sequence",
	KindMap:       "map",
	KindSet:       "set",
	KindBoxed:     "boxed",
	KindDeferred:  "deferred",
	KindMergeable: "mergeable",
	KindRecord:    "record",
	KindOpaque:    "opaque",
	KindFailure:   "failure",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mergeable is implemented by values that define how they combine with the
// previous value themselves.
type Mergeable interface {
	MergeInto(ctx context.Context, prev any, e *Engine, top bool) (any, error)
}

// Boxed is implemented by wrappers around a single value. The unwrapped
// value replaces the previous one.
type Boxed interface {
	Unbox() any
}

// Opaque marks a type whose values replace earlier values wholesale, even
// when their shape would otherwise merge.
type Opaque interface {
	Opaque()
}

var emptyStruct = reflect.TypeOf(struct{}{})

// Classify returns the kind of v. Classification looks only at the Go
// shape of the value, never at where it was loaded from.
func Classify(v any) Kind {
	if v == nil {
		return KindNull
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
	}

	switch v.(type) {
	case error:
		return KindFailure
	case Mergeable:
		return KindMergeable
	case Func, func(context.Context, any, *Engine, bool) (any, error), func(any) (any, error), Future:
		return KindDeferred
	case Boxed:
		return KindBoxed
	case Opaque, time.Time, *time.Time, *regexp.Regexp, *big.Int, *big.Float, *big.Rat:
		return KindOpaque
	case Set:
		return KindSet
	case map[string]any:
		return KindRecord
	case []any:
		return KindSequence
	}

	if isPrimitiveKind(rv.Kind()) {
		return KindPrimitive
	}

	switch rv.Kind() {
	case reflect.Pointer:
		switch elem := rv.Elem(); {
		case isPrimitiveKind(elem.Kind()):
			return KindBoxed
		case elem.Kind() == reflect.Struct:
			return KindRecord
		}
		return KindOpaque
	case reflect.Struct:
		return KindRecord
	case reflect.Map:
		t := rv.Type()
		if t.Elem() == emptyStruct {
			return KindSet
		}
		if t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.Interface {
			return KindRecord
		}
		return KindMap
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindOpaque
		}
		return KindSequence
	default:
		// Arrays, channels, funcs and unsafe pointers.
		return KindOpaque
	}
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
