package output

import (
	"encoding/json"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter formats data as an aligned table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
// Supports: Table, map[string]any (flattened to dotted keys) and structs.
// Anything else falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, ok := toTable(data)
	if !ok {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(Normalize(data))
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// toTable converts a record or a struct to a table.
func toTable(data any) (*Table, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		rec, ok := Normalize(data).(map[string]any)
		if !ok {
			return nil, false
		}
		table := &Table{Headers: []string{"KEY", "VALUE"}}
		for _, row := range Flatten(rec) {
			table.AddRow(row.Key, cell(row.Value))
		}
		return table, true
	case reflect.Struct:
		return structToTable(v), true
	default:
		return nil, false
	}
}

// structToTable converts a struct to a FIELD/VALUE table. Field names
// come from koanf tags; fields tagged "-" are skipped.
func structToTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("koanf"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		table.AddRow(name, cell(v.Field(i).Interface()))
	}
	return table
}

// Row is one leaf of a flattened record.
type Row struct {
	Key   string
	Value any
}

// Flatten lists the leaves of rec as dotted keys in sorted order. Empty
// nested records are kept as leaves.
func Flatten(rec map[string]any) []Row {
	var rows []Row
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := m[k].(map[string]any); ok && len(sub) > 0 {
				walk(key, sub)
				continue
			}
			rows = append(rows, Row{Key: key, Value: m[k]})
		}
	}
	walk("", rec)
	return rows
}

// cell formats a value for a table cell.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.RFC3339)
	case bool, int, int64, float64:
		return fmtValue(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return "-"
		}
		return inline(v)
	default:
		return fmtValue(v)
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
