package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sumconf"

// Gather outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Registry holds all application metrics.
//
// A nil *Registry is valid: every recording method is a no-op, so
// components take an optional registry without checking for it.
type Registry struct {
	reg *prometheus.Registry

	// Listing cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Gather metrics
	Gathers        *prometheus.CounterVec
	GatherDuration prometheus.Histogram
	Fragments      *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing_cache",
			Name:      "hits_total",
			Help:      "Directory listings served from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing_cache",
			Name:      "misses_total",
			Help:      "Directory listings read from the filesystem",
		}),
		Gathers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gather",
			Name:      "total",
			Help:      "Completed gathers by outcome",
		}, []string{"outcome"}),
		GatherDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gather",
			Name:      "duration_seconds",
			Help:      "Wall time of a gather from walk to final fold",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		Fragments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gather",
			Name:      "fragments_total",
			Help:      "Fragments loaded by registry key of the loader",
		}, []string{"loader"}),
	}

	r.reg.MustRegister(
		r.CacheHits,
		r.CacheMisses,
		r.Gathers,
		r.GatherDuration,
		r.Fragments,
	)
	return r
}

// MustRegister registers additional collectors, e.g. a cache Collector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for exposition and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// CacheHit records a listing served from the cache.
func (r *Registry) CacheHit() {
	if r == nil {
		return
	}
	r.CacheHits.Inc()
}

// CacheMiss records a listing read through to the filesystem.
func (r *Registry) CacheMiss() {
	if r == nil {
		return
	}
	r.CacheMisses.Inc()
}

// FragmentLoaded records one loaded fragment.
func (r *Registry) FragmentLoaded(loader string) {
	if r == nil {
		return
	}
	if loader == "" {
		loader = "none"
	}
	r.Fragments.WithLabelValues(loader).Inc()
}

// GatherDone records a finished gather.
func (r *Registry) GatherDone(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Gathers.WithLabelValues(outcome).Inc()
	r.GatherDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format. The file is written atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
