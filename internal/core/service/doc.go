// Package service provides the gather orchestrator for sumconf.
//
// A gather validates the application name, fills in default options,
// finds candidate files (by walking from the start directory or from an
// explicit directory list), selects a loader for every candidate, loads
// them concurrently and folds the fragments farthest first through one
// merge.Engine. The result carries the combined value, the provenance of
// every top-level key and the boundary set by a stop key.
//
// Gatherers are safe for concurrent use; each gather gets its own engine
// and shares only the listing cache.
package service
