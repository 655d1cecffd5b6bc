package merge

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Set is an unordered collection of distinct values. Any map whose element
// type is struct{} is treated as a set as well.
type Set map[any]struct{}

// NewSet returns a set holding items.
func NewSet(items ...any) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// concatSequences appends b to a in a new slice. The element type is kept
// when both slices share it; mixed slices become []any.
func concatSequences(a, b any) any {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() == bv.Type() {
		out := reflect.MakeSlice(av.Type(), 0, av.Len()+bv.Len())
		out = reflect.AppendSlice(out, av)
		out = reflect.AppendSlice(out, bv)
		return out.Interface()
	}

	out := make([]any, 0, av.Len()+bv.Len())
	for i := 0; i < av.Len(); i++ {
		out = append(out, av.Index(i).Interface())
	}
	for i := 0; i < bv.Len(); i++ {
		out = append(out, bv.Index(i).Interface())
	}
	return out
}

// unionMaps returns a new map with the entries of a and then b, so b wins
// on shared keys. Maps of different types unite into map[any]any.
func unionMaps(a, b any) any {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() == bv.Type() {
		out := reflect.MakeMapWithSize(av.Type(), av.Len()+bv.Len())
		copyEntries(out, av)
		copyEntries(out, bv)
		return out.Interface()
	}

	out := make(map[any]any, av.Len()+bv.Len())
	for _, m := range []reflect.Value{av, bv} {
		iter := m.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = iter.Value().Interface()
		}
	}
	return out
}

// unionSets returns a new set holding the members of a and b.
func unionSets(a, b any) any {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() == bv.Type() {
		out := reflect.MakeMapWithSize(av.Type(), av.Len()+bv.Len())
		copyEntries(out, av)
		copyEntries(out, bv)
		return out.Interface()
	}

	out := make(Set, av.Len()+bv.Len())
	for _, m := range []reflect.Value{av, bv} {
		iter := m.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = struct{}{}
		}
	}
	return out
}

func copyEntries(dst, src reflect.Value) {
	iter := src.MapRange()
	for iter.Next() {
		dst.SetMapIndex(iter.Key(), iter.Value())
	}
}

// unbox returns the value inside a Boxed wrapper or a pointer to a primitive.
func unbox(v any) any {
	if b, ok := v.(Boxed); ok {
		return b.Unbox()
	}
	return reflect.ValueOf(v).Elem().Interface()
}

// toRecord views a record-kind value as map[string]any. Plain
// map[string]any values are returned as is; structs are decoded with
// mapstructure, honoring `mapstructure` field tags. Nested structs are
// decoded to records as well.
func toRecord(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}

	var out map[string]any
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("merge: decode %T as record: %w", v, err)
	}
	return out, nil
}
