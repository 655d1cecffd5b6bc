// Package merge implements the combination engine that folds configuration
// fragments into one value.
//
// Combination dispatches on the structural kind of the incoming value (see
// Classify): records merge key by key, sequences append, associative maps
// and sets union, scalars and opaque values overwrite, deferred values are
// resolved first, and error values abort the whole fold.
//
// Each gather uses its own Engine. The engine owns the accumulator records
// it builds and tracks, for every top-level key, the path of the last
// fragment that set it. A fragment whose stop key (default "root") is true
// discards everything folded before it.
package merge
