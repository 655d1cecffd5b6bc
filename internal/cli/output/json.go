package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Normalize(data))
}

// inline renders v as compact single-line JSON, falling back to %v.
func inline(v any) string {
	b, err := json.Marshal(Normalize(v))
	if err != nil {
		return fmtValue(v)
	}
	return string(b)
}
