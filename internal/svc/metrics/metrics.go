// If you are AI: This file implements Prometheus metrics for streams and ingest.
// Registry stats are read on scrape; ingest and API counters are pushed as they happen.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logbook/internal/core/metadata"
)

// Metrics owns the logbook collectors.
// It satisfies ingest.Observer and api.Recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	eventsIngested    *prometheus.CounterVec
	segmentsFinalized prometheus.Counter
	segmentsFailed    prometheus.Counter
	segmentBytes      prometheus.Histogram
	registryMisses    *prometheus.CounterVec
}

// New registers all collectors on reg. registry is read on every scrape.
func New(reg *prometheus.Registry, registry *metadata.Registry) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_events_ingested_total",
			Help: "Events accepted per stream.",
		}, []string{"stream"}),
		segmentsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_segments_finalized_total",
			Help: "Segments sealed and persisted.",
		}),
		segmentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_segments_failed_total",
			Help: "Segments that could not be sealed or persisted.",
		}),
		segmentBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_segment_compressed_bytes",
			Help:    "Compressed size of sealed segments.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		registryMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_registry_misses_total",
			Help: "Registry lookups for unknown streams, by operation.",
		}, []string{"op"}),
	}

	collectors := []prometheus.Collector{
		newStreamCollector(registry),
		m.eventsIngested,
		m.segmentsFinalized,
		m.segmentsFailed,
		m.segmentBytes,
		m.registryMisses,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// EventsIngested counts accepted events.
func (m *Metrics) EventsIngested(stream string, n int) {
	m.eventsIngested.WithLabelValues(stream).Add(float64(n))
}

// SegmentFinalized counts a persisted segment.
func (m *Metrics) SegmentFinalized(stream string, compressedBytes int) {
	m.segmentsFinalized.Inc()
	m.segmentBytes.Observe(float64(compressedBytes))
}

// SegmentFailed counts a segment lost to an encoder or storage error.
func (m *Metrics) SegmentFailed(stream string) {
	m.segmentsFailed.Inc()
}

// RegistryMiss counts a lookup of an unknown stream.
func (m *Metrics) RegistryMiss(op string) {
	m.registryMisses.WithLabelValues(op).Inc()
}

// Forget drops per-stream series of a deleted stream.
func (m *Metrics) Forget(stream string) {
	m.eventsIngested.DeleteLabelValues(stream)
}

// RegisterRoutes adds /metrics to the provided mux.
func (m *Metrics) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
