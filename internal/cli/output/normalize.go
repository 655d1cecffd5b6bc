package output

import (
	"cmp"
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/yndnr/sumconf-go/internal/core/merge"
)

// Normalize converts a configuration value into plain maps with string
// keys, slices and scalars so that every encoder accepts it. Sets become
// sorted slices. Structs and scalars are returned unchanged.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case merge.Set:
		out := make([]any, 0, len(t))
		for k := range t {
			out = append(out, Normalize(k))
		}
		sortAny(out)
		return out
	case time.Time, []byte, encoding.TextMarshaler:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Elem() == reflect.TypeOf(struct{}{}) {
			out := make([]any, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				out = append(out, Normalize(k.Interface()))
			}
			sortAny(out)
			return out
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmtValue(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

func sortAny(s []any) {
	slices.SortFunc(s, func(a, b any) int {
		return cmp.Compare(fmtValue(a), fmtValue(b))
	})
}

func fmtValue(v any) string {
	return fmt.Sprintf("%v", v)
}
