// If you are AI: This file contains unit tests for segment sealing and the background flusher.

package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"logbook/internal/core/metadata"
)

func TestFlushFinalizesSegment(t *testing.T) {
	store := newMemStore()
	svc, reg, obs := newTestService(t, store, nil, 1<<20)
	reg.AddStream("app", "", "")
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "app", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if store.segmentCount("app") != 1 {
		t.Fatalf("Expected 1 segment, got %d", store.segmentCount("app"))
	}
	data := store.segments["app"][0]
	if got := decompress(t, data); got != "{\"a\":1}\n" {
		t.Errorf("Unexpected segment contents %q", got)
	}

	stats, _ := reg.Stats("app")
	if stats.CompressedSize != uint64(len(data)) || stats.PrevCompressed != uint64(len(data)) {
		t.Errorf("Expected compressed and prev %d, got %+v", len(data), stats)
	}
	if obs.finalized != 1 {
		t.Errorf("Expected 1 finalized segment, got %d", obs.finalized)
	}

	// Nothing new, nothing sealed
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if store.segmentCount("app") != 1 {
		t.Error("Empty segment should not be persisted")
	}

	// The next segment accumulates on top of the finalized one
	if _, err := svc.Ingest(ctx, "app", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	next, _ := reg.Stats("app")
	if next.CompressedSize <= stats.CompressedSize {
		t.Errorf("Compressed size should grow past %d, got %d", stats.CompressedSize, next.CompressedSize)
	}
	if next.PrevCompressed != stats.PrevCompressed {
		t.Errorf("Prev should be unchanged until the next seal, got %d", next.PrevCompressed)
	}
}

func TestIngestSealsAtLimit(t *testing.T) {
	store := newMemStore()
	svc, reg, _ := newTestService(t, store, nil, 16)
	reg.AddStream("app", "", "")
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "app", []byte(`{"msg":"short"}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if store.segmentCount("app") != 0 {
		t.Fatal("Segment below the limit should stay open")
	}
	if _, err := svc.Ingest(ctx, "app", []byte(`{"msg":"more"}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if store.segmentCount("app") != 1 {
		t.Fatalf("Expected a sealed segment, got %d", store.segmentCount("app"))
	}

	got := decompress(t, store.segments["app"][0])
	if got != "{\"msg\":\"short\"}\n{\"msg\":\"more\"}\n" {
		t.Errorf("Unexpected segment contents %q", got)
	}
	stats, _ := reg.Stats("app")
	if stats.Size != uint64(len(`{"msg":"short"}`)+len(`{"msg":"more"}`)) {
		t.Errorf("Unexpected size %d", stats.Size)
	}
}

func TestFlushPersistFailureRestartsSegment(t *testing.T) {
	store := newMemStore()
	store.failSeg = errors.New("unavailable")
	svc, reg, obs := newTestService(t, store, nil, 1<<20)
	reg.AddStream("app", "", "")
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "app", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := svc.Flush(ctx); err == nil {
		t.Fatal("Expected flush error")
	}
	if obs.failed != 1 {
		t.Errorf("Expected 1 failed segment, got %d", obs.failed)
	}
	stats, _ := reg.Stats("app")
	if stats.PrevCompressed != 0 {
		t.Errorf("Failed segment must not advance prev, got %d", stats.PrevCompressed)
	}

	// The next write replaces the lost segment's contribution
	store.failSeg = nil
	if _, err := svc.Ingest(ctx, "app", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	data := store.segments["app"][0]
	if got := decompress(t, data); got != "{\"a\":2}\n" {
		t.Errorf("Unexpected segment contents %q", got)
	}
	stats, _ = reg.Stats("app")
	if stats.CompressedSize != uint64(len(data)) {
		t.Errorf("Expected compressed %d, got %d", len(data), stats.CompressedSize)
	}
}

func TestConcurrentIngestTotals(t *testing.T) {
	store := newMemStore()
	svc, reg, _ := newTestService(t, store, nil, 256)
	reg.AddStream("app", "", "")
	ctx := context.Background()

	const workers = 8
	const perWorker = 50
	event := []byte(`{"n":12345}`)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := svc.Ingest(ctx, "app", event); err != nil {
					t.Errorf("Ingest failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	stats, _ := reg.Stats("app")
	if stats.Size != uint64(workers*perWorker*len(event)) {
		t.Errorf("Expected size %d, got %d", workers*perWorker*len(event), stats.Size)
	}

	var total uint64
	var lines int
	for _, seg := range store.segments["app"] {
		total += uint64(len(seg))
		lines += strings.Count(decompress(t, seg), "\n")
	}
	if lines != workers*perWorker {
		t.Errorf("Expected %d persisted events, got %d", workers*perWorker, lines)
	}
	if stats.CompressedSize != stats.PrevCompressed {
		t.Errorf("All segments sealed, expected compressed == prev, got %+v", stats)
	}
	if stats.CompressedSize != total {
		t.Errorf("Expected compressed size to sum all segments (%d), got %d", total, stats.CompressedSize)
	}
}

func TestStartStopFlushes(t *testing.T) {
	store := newMemStore()
	reg := metadata.NewRegistry()
	reg.AddStream("app", "", "")
	svc := NewService(reg, store, nil, Options{MaxSegmentBytes: 1 << 20, FlushInterval: time.Hour})
	svc.Start()

	if _, err := svc.Ingest(context.Background(), "app", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if store.segmentCount("app") != 1 {
		t.Errorf("Stop should seal the open segment, got %d segments", store.segmentCount("app"))
	}
}
