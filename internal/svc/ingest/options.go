// If you are AI: This file defines the ingest service's dependencies and options.

package ingest

import (
	"context"
	"log/slog"
	"time"
)

// Store is the part of durable storage the ingest path writes to.
type Store interface {
	PutSchema(ctx context.Context, name string, schema []byte) error
	PutSegment(ctx context.Context, name, segmentID string, data []byte) error
}

// Observer receives ingest accounting. Implementations must be safe for concurrent use.
type Observer interface {
	EventsIngested(stream string, n int)
	SegmentFinalized(stream string, compressedBytes int)
	SegmentFailed(stream string)
}

// nopObserver discards everything.
type nopObserver struct{}

// EventsIngested does nothing.
func (nopObserver) EventsIngested(string, int) {}

// SegmentFinalized does nothing.
func (nopObserver) SegmentFinalized(string, int) {}

// SegmentFailed does nothing.
func (nopObserver) SegmentFailed(string) {}

// Options configures segment sealing.
type Options struct {
	MaxSegmentBytes int64         // Seal once this many raw bytes are buffered
	FlushInterval   time.Duration // Background seal period; 0 disables the flusher
	Logger          *slog.Logger
	Observer        Observer
}
