// Package domain defines the core domain models for sumconf.
//
// Domain models are plain values without IO dependencies. This package
// contains the error taxonomy shared by the walker, the loaders, the
// combination engine and the CLI:
//
//   - NAME: application name validation
//   - LOAD: loader selection, empty files, parse failures, fragment shape
//   - MERG: failures raised while folding fragments together
//   - CLI: command-line usage errors
package domain
