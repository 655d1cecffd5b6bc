// Package command provides the sumconf command-line interface.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, per-run setup and exit codes
//   - get.go: gather and print (the default command)
//   - defaults.go: print the default gather options
//   - watch.go: gather again whenever a searched directory changes
//
// Every command loads the CLI's own configuration first (see
// internal/cli/config), then turns it into gather options. A bare package
// name runs get, and flags may follow the package name.
package command
