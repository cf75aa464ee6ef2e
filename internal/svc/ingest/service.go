// If you are AI: This file implements the ingest service.
// It appends events to per-stream segments, keeps registry stats in step and seals segments to storage.

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logbook/internal/core/bus"
	"logbook/internal/core/metadata"
)

// stream pairs a segment with the lock serializing ingest for one stream.
type stream struct {
	mu  sync.Mutex
	seg *segment
}

// Service ingests events into streams known to the registry.
// Lock order: Service.mu, then stream.mu, then the registry's own lock. I/O
// (storage writes) happens under stream.mu only.
type Service struct {
	registry *metadata.Registry
	store    Store
	hub      *bus.Hub
	opts     Options
	logger   *slog.Logger
	observer Observer

	mu      sync.Mutex
	streams map[string]*stream

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates an ingest service. hub may be nil to disable live tail.
func NewService(registry *metadata.Registry, store Store, hub *bus.Hub, opts Options) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Service{
		registry: registry,
		store:    store,
		hub:      hub,
		opts:     opts,
		logger:   logger.With("component", "ingest"),
		observer: observer,
		streams:  make(map[string]*stream),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ingest appends the events in body to the named stream.
// Returns the number of events accepted. Unknown streams fail with
// metadata.ErrStreamMetaNotFound; malformed bodies with ErrInvalidEvent.
func (s *Service) Ingest(ctx context.Context, name string, body []byte) (int, error) {
	events, err := decodeEvents(body)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	if !s.registry.Contains(name) {
		return 0, &metadata.StreamError{Name: name, Err: metadata.ErrStreamMetaNotFound}
	}

	st, err := s.streamFor(name)
	if err != nil {
		return 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seg.dropped {
		// Deleted between lookup and lock
		return 0, &metadata.StreamError{Name: name, Err: metadata.ErrStreamMetaNotFound}
	}

	// Read under the stream lock so concurrent first requests infer the schema once
	schema, err := s.registry.Schema(name)
	if err != nil {
		s.dropStream(name, st)
		return 0, err
	}
	if schema == "" {
		if err := s.setSchema(ctx, name, events[0]); err != nil {
			return 0, err
		}
	}

	for _, ev := range events {
		if err := st.seg.append(ev); err != nil {
			return 0, err
		}
	}
	compressed, err := st.seg.flush()
	if err != nil {
		return 0, err
	}
	// Size counts the request body as received, not the compacted events
	if err := s.registry.UpdateStats(name, uint64(len(body)), uint64(compressed)); err != nil {
		// Deleted while we were appending
		s.dropStream(name, st)
		return 0, err
	}

	if s.hub != nil {
		for _, ev := range events {
			s.hub.Publish(bus.NewEvent(name, ev))
		}
	}
	s.observer.EventsIngested(name, len(events))

	if st.seg.rawBytes >= s.opts.MaxSegmentBytes {
		if err := s.sealLocked(ctx, name, st); err != nil {
			s.logger.Error("seal segment failed", "stream", name, "error", err)
		}
	}
	return len(events), nil
}

// Drop discards the open segment of a stream without sealing it.
// Called when a stream is deleted.
func (s *Service) Drop(name string) {
	s.mu.Lock()
	st, ok := s.streams[name]
	delete(s.streams, name)
	s.mu.Unlock()

	if ok {
		st.mu.Lock()
		st.seg.discard()
		st.mu.Unlock()
	}
}

// Start runs the background flusher until Stop is called.
func (s *Service) Start() {
	if s.opts.FlushInterval <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Flush(s.ctx)
			}
		}
	}()
}

// Stop stops the flusher and seals whatever is still open.
func (s *Service) Stop(ctx context.Context) error {
	s.cancel()
	s.wg.Wait()
	return s.Flush(ctx)
}

// OpenSegments returns the number of streams with an open segment.
func (s *Service) OpenSegments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// streamFor returns the ingest state for name, creating it on first use.
func (s *Service) streamFor(name string) (*stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.streams[name]; ok {
		return st, nil
	}
	seg, err := newSegment()
	if err != nil {
		return nil, err
	}
	st := &stream{seg: seg}
	s.streams[name] = st
	return st, nil
}

// dropStream forgets st if it is still the current state for name.
// Caller holds st.mu.
func (s *Service) dropStream(name string, st *stream) {
	s.mu.Lock()
	if s.streams[name] == st {
		delete(s.streams, name)
	}
	s.mu.Unlock()
	st.seg.discard()
}

// setSchema infers, persists and registers the schema of a stream.
func (s *Service) setSchema(ctx context.Context, name string, event []byte) error {
	schema, err := InferSchema(event)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := s.store.PutSchema(ctx, name, raw); err != nil {
		return fmt.Errorf("persist schema: %w", err)
	}
	return s.registry.SetSchema(name, string(raw))
}
