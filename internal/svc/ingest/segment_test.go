// If you are AI: This file contains unit tests for the in-memory zstd segment.

package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSegmentLifecycle(t *testing.T) {
	seg, err := newSegment()
	if err != nil {
		t.Fatalf("newSegment failed: %v", err)
	}
	if !seg.empty() {
		t.Error("New segment should be empty")
	}
	firstID := seg.id

	if err := seg.append([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	n, err := seg.flush()
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if n == 0 {
		t.Error("Flush should emit compressed bytes")
	}
	if seg.rawBytes != int64(len(`{"a":1}`)) || seg.events != 1 {
		t.Errorf("Unexpected counters raw=%d events=%d", seg.rawBytes, seg.events)
	}

	data, err := seg.seal()
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if got := decompress(t, data); got != "{\"a\":1}\n" {
		t.Errorf("Unexpected contents %q", got)
	}

	seg.reset()
	if !seg.empty() || seg.buf.Len() != 0 {
		t.Error("Reset should start an empty segment")
	}
	if seg.id == firstID {
		t.Error("Reset should assign a new segment id")
	}

	// The encoder is reusable after reset
	if err := seg.append([]byte(`{"b":2}`)); err != nil {
		t.Fatalf("append after reset failed: %v", err)
	}
	data, err = seg.seal()
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if got := decompress(t, data); got != "{\"b\":2}\n" {
		t.Errorf("Unexpected contents after reset %q", got)
	}
}

func TestSegmentDiscard(t *testing.T) {
	seg, err := newSegment()
	if err != nil {
		t.Fatalf("newSegment failed: %v", err)
	}
	seg.append([]byte(`{"a":1}`))
	seg.discard()
	seg.discard()
	seg.reset()

	if !seg.empty() {
		t.Error("Discarded segment should report empty")
	}
	if err := seg.append([]byte(`{"a":2}`)); !errors.Is(err, errSegmentDropped) {
		t.Errorf("Expected errSegmentDropped, got %v", err)
	}
}

func TestNewSegmentID(t *testing.T) {
	opened := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	id := newSegmentID(opened)

	if !strings.HasPrefix(id, "20240309T140506Z.") || !strings.HasSuffix(id, ".zst") {
		t.Errorf("Unexpected segment id %q", id)
	}
	if id == newSegmentID(opened) {
		t.Error("Segment ids opened at the same time must differ")
	}
}
