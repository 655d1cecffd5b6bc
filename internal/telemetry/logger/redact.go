// Package logger provides structured logging for sumconf.
package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted. Configuration files
// routinely carry credentials, and diagnostic logging dumps whole fragments.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
	"auth",
	"bearer",
	"private",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive redacts an attribute whose key suggests sensitive data.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString && IsSensitiveKey(a.Key) {
		if a.Value.String() != "" {
			return slog.String(a.Key, redactedValue)
		}
		return a
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// Redact returns a copy of a configuration value safe for logging:
// non-empty scalar values under sensitive keys are replaced, at any depth
// of nested maps and slices. The input is never modified.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSensitiveKey(k) && isScalar(val) {
				out[k] = redactedValue
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}

func isScalar(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case map[string]any, []any:
		return false
	default:
		return true
	}
}
