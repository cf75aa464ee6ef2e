// If you are AI: This file implements a Prometheus collector over the metadata registry.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"logbook/internal/core/metadata"
)

// streamCollector exports per-stream stats from a registry snapshot.
type streamCollector struct {
	registry       *metadata.Registry
	ingestedBytes  *prometheus.Desc
	compressedSize *prometheus.Desc
	streams        *prometheus.Desc
}

// newStreamCollector builds the descriptors for registry-backed series.
func newStreamCollector(registry *metadata.Registry) *streamCollector {
	return &streamCollector{
		registry: registry,
		ingestedBytes: prometheus.NewDesc(
			"logbook_stream_ingested_bytes",
			"Raw bytes ingested per stream.",
			[]string{"stream"}, nil,
		),
		compressedSize: prometheus.NewDesc(
			"logbook_stream_compressed_bytes",
			"Compressed bytes per stream, including the open segment.",
			[]string{"stream"}, nil,
		),
		streams: prometheus.NewDesc(
			"logbook_streams",
			"Number of registered streams.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *streamCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ingestedBytes
	ch <- c.compressedSize
	ch <- c.streams
}

// Collect implements prometheus.Collector.
func (c *streamCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.registry.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.streams, prometheus.GaugeValue, float64(len(snapshot)))
	for name, meta := range snapshot {
		ch <- prometheus.MustNewConstMetric(c.ingestedBytes, prometheus.CounterValue, float64(meta.Stats.Size), name)
		ch <- prometheus.MustNewConstMetric(c.compressedSize, prometheus.GaugeValue, float64(meta.Stats.CompressedSize), name)
	}
}
