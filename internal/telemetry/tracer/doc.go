// Package tracer times the phases of a gather.
//
// Spans are lightweight: ending one writes a single debug record through
// the context logger with the span name, its duration and any attributes.
// Nothing is recorded unless debug logging is enabled, so spans cost one
// level check on the normal path.
//
// Nested spans share a dotted name: a "load" span started under a "gather"
// span logs as "gather.load".
package tracer
