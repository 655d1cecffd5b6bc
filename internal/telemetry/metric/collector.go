package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector reports the current size of the listing cache at scrape time.
type Collector struct {
	size    func() int
	entries *prometheus.Desc
}

// NewCollector creates a collector that calls size on every collection.
func NewCollector(size func() int) *Collector {
	return &Collector{
		size: size,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "listing_cache", "entries"),
			"Directories currently held in the listing cache",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(c.size()))
}
