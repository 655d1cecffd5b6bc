// Package logger provides structured logging for sumconf.
//
// This package wraps log/slog:
//
//   - logger.go: Logger interface, handler setup and the global level
//   - context.go: Context-aware logging carrying the gather ID
//   - redact.go: Redaction of sensitive configuration keys and values
//
// Diagnostic output (per-fragment and per-merge-step state) is logged at
// debug level and is enabled process-wide with SUMCONF_DEBUG=1 or the
// CLI's -v flag.
package logger
