// If you are AI: This file defines StreamMetadata and Stats, the per-stream records held by the registry.
// Stats accounting follows the in-flight segment model: compressed size is recomputed, not accumulated.

package metadata

// StreamMetadata is the in-memory record for a single log stream.
// Empty Schema means the schema is not known yet; empty AlertConfig means no alerts.
type StreamMetadata struct {
	Schema      string `json:"schema"`
	AlertConfig string `json:"alert_config"`
	Stats       Stats  `json:"stats"`
}

// Stats holds running ingestion statistics for a stream.
// PrevCompressed is the compressed total of all finalized segments and is never serialized.
type Stats struct {
	Size           uint64 `json:"size"`
	CompressedSize uint64 `json:"compressed_size"`
	PrevCompressed uint64 `json:"-"`
}

// Update applies one ingestion step.
// size is the event body's raw size and is accumulated.
// compressedSize is the current encoded size of the open segment; the total
// compressed size is this plus the size of all finalized segments, so repeated
// calls for the same segment overwrite each other.
func (s *Stats) Update(size, compressedSize uint64) {
	s.Size += size
	s.CompressedSize = s.PrevCompressed + compressedSize
}

// Rollover marks the open segment as finalized.
// Subsequent updates accumulate on top of the current compressed total.
func (s *Stats) Rollover() {
	s.PrevCompressed = s.CompressedSize
}
