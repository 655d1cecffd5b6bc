// Package confloader turns candidate files into configuration fragments.
//
// A Registry maps exact base names (package.json) and extensions (.yaml,
// or "" for dotfiles like .foorc) to Loaders. Selection tries the base
// name first, then the extension, and fails with ErrNoLoaderForFile when
// neither is registered.
//
// Built-in formats:
//
//   - YAML (also the format of extensionless rc files)
//   - JSON
//   - TOML
//   - package.json and sum.config.json, which hold the application's
//     configuration under a key named after the application
//
// Every built-in loader reports a missing file as absent (a nil value)
// and an empty file as absent unless LoadOptions.ErrorOnEmpty is set.
// Malformed content is reported as *domain.ParseError with the file path
// and, where the parser knows it, the line and column.
//
// The package also provides a Watcher that reports changes in the
// directories a gather visited.
package confloader
