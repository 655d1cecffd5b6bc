package output

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
)

// Group holds the top-level keys set by one file.
type Group struct {
	// Path is the file, relative to the working directory when possible.
	Path   string
	Values map[string]any
}

// GroupBySource splits value by the file that set each top-level key.
// Groups follow the order of files (nearest first); keys without a
// source go into a trailing group with an empty path.
func GroupBySource(value map[string]any, source func(string) (string, bool), files []string, cwd string) []Group {
	byPath := make(map[string]map[string]any)
	for k, v := range value {
		p, _ := source(k)
		if byPath[p] == nil {
			byPath[p] = make(map[string]any)
		}
		byPath[p][k] = v
	}

	order := slices.Clone(files)
	for _, p := range slices.Sorted(maps.Keys(byPath)) {
		if p != "" && !slices.Contains(order, p) {
			order = append(order, p)
		}
	}
	order = append(order, "")

	var groups []Group
	for _, p := range order {
		vals, ok := byPath[p]
		if !ok {
			continue
		}
		groups = append(groups, Group{Path: relPath(cwd, p), Values: vals})
		delete(byPath, p)
	}
	return groups
}

// WriteSources writes groups as:
//
//	from "<path>":
//	  key: value
func WriteSources(w io.Writer, groups []Group) error {
	for _, g := range groups {
		if _, err := fmt.Fprintf(w, "from %q:\n", g.Path); err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(g.Values)) {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", k, inline(g.Values[k])); err != nil {
				return err
			}
		}
	}
	return nil
}

// SourceTable renders groups as a KEY/VALUE/SOURCE table.
func SourceTable(groups []Group) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE", "SOURCE"}}
	for _, g := range groups {
		for _, k := range slices.Sorted(maps.Keys(g.Values)) {
			table.AddRow(k, cell(Normalize(g.Values[k])), g.Path)
		}
	}
	return table
}

// SourceMap renders groups as a path to values map for JSON and YAML.
func SourceMap(groups []Group) map[string]any {
	out := make(map[string]any, len(groups))
	for _, g := range groups {
		out[g.Path] = g.Values
	}
	return out
}

func relPath(cwd, p string) string {
	if p == "" || cwd == "" {
		return p
	}
	if rel, err := filepath.Rel(cwd, p); err == nil {
		return rel
	}
	return p
}
