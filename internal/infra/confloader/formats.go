package confloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/sumconf-go/internal/core/domain"
)

// readSource reads path for a loader. It returns nil data for a missing
// file and for an empty file unless opts.ErrorOnEmpty is set.
func readSource(ctx context.Context, path string, opts LoadOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		if opts.ErrorOnEmpty {
			return nil, domain.ErrEmptyFile.WithDetails(fmt.Sprintf("%q", path))
		}
		return nil, nil
	}
	return data, nil
}

var yamlLine = regexp.MustCompile(`^yaml: line (\d+): `)

// YAML returns a loader for YAML documents. Only the first document of a
// stream is read.
func YAML() Loader {
	return LoaderFunc(func(ctx context.Context, _ string, path string, opts LoadOptions) (any, error) {
		data, err := readSource(ctx, path, opts)
		if err != nil || data == nil {
			return nil, err
		}

		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			pe := &domain.ParseError{Path: path, Msg: err.Error(), Cause: err}
			if m := yamlLine.FindStringSubmatch(pe.Msg); m != nil {
				pe.Line, _ = strconv.Atoi(m[1])
				pe.Msg = "yaml: " + strings.TrimPrefix(pe.Msg, m[0])
			}
			return nil, pe
		}
		return stringKeys(v), nil
	})
}

// stringKeys rewrites YAML mappings whose keys are all scalars, such as
// `1: a` or `true: b`, as records keyed by the key's text so they merge
// like any other record. Mappings with collection keys are left alone.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		keys := make(map[any]string, len(t))
		for k := range t {
			key, ok := scalarKey(k)
			if !ok {
				for k, val := range t {
					t[k] = stringKeys(val)
				}
				return t
			}
			keys[k] = key
		}
		rec := make(map[string]any, len(t))
		for k, val := range t {
			rec[keys[k]] = stringKeys(val)
		}
		return rec
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func scalarKey(k any) (string, bool) {
	switch t := k.(type) {
	case nil:
		return "null", true
	case string:
		return t, true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t), true
	case time.Time:
		return t.Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}

// JSON returns a loader for JSON documents.
func JSON() Loader {
	return LoaderFunc(func(ctx context.Context, _ string, path string, opts LoadOptions) (any, error) {
		data, err := readSource(ctx, path, opts)
		if err != nil || data == nil {
			return nil, err
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			pe := &domain.ParseError{Path: path, Msg: "json: " + err.Error(), Cause: err}
			var se *json.SyntaxError
			if errors.As(err, &se) {
				pe.Line, pe.Column = lineColumn(data, se.Offset)
			}
			return nil, pe
		}
		return v, nil
	})
}

// TOML returns a loader for TOML documents.
func TOML() Loader {
	return LoaderFunc(func(ctx context.Context, _ string, path string, opts LoadOptions) (any, error) {
		data, err := readSource(ctx, path, opts)
		if err != nil || data == nil {
			return nil, err
		}

		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			pe := &domain.ParseError{Path: path, Msg: "toml: " + err.Error(), Cause: err}
			var te toml.ParseError
			if errors.As(err, &te) {
				pe.Msg = "toml: " + te.Message
				pe.Line, pe.Column = te.Position.Line, te.Position.Col
			}
			return nil, pe
		}
		return v, nil
	})
}

// Subkey wraps a loader for manifest files such as package.json that hold
// the application's configuration under a key named after it. A manifest
// without the key contributes nothing.
func Subkey(inner Loader) Loader {
	return LoaderFunc(func(ctx context.Context, appName, path string, opts LoadOptions) (any, error) {
		v, err := inner.Load(ctx, appName, path, opts)
		if err != nil {
			return nil, err
		}
		doc, ok := v.(map[string]any)
		if !ok {
			return nil, nil
		}
		sub, ok := doc[appName]
		if !ok {
			return nil, nil
		}
		if _, ok := sub.(map[string]any); !ok {
			return nil, domain.ErrInvalidFragmentShape.WithDetails(
				fmt.Sprintf("invalid type in %s key %s, expected object", path, appName))
		}
		return sub, nil
	})
}

// Static returns a loader that yields v for every existing file it is
// asked to load. It registers configuration written in Go, including
// deferred values such as merge.Func, under a file name or extension.
func Static(v any) Loader {
	return LoaderFunc(func(ctx context.Context, _ string, path string, _ LoadOptions) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if st.IsDir() {
			return nil, fmt.Errorf("%s is not a file", path)
		}
		return v, nil
	})
}

// lineColumn converts a byte offset into 1-based line and column numbers.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	head := data[:offset]
	line := bytes.Count(head, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(head, '\n')
	if offset > 0 {
		// SyntaxError.Offset points just past the offending byte.
		col--
	}
	if col < 1 {
		col = 1
	}
	return line, col
}
