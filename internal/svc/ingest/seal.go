// If you are AI: This file implements segment sealing: final stats, persistence and finalize.
// A segment is sealed on size, on the flusher tick and on shutdown.

package ingest

import (
	"context"
	"errors"
	"fmt"

	"logbook/internal/core/metadata"
)

// Flush seals every non-empty segment. Errors are logged and the first is returned.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	streams := make(map[string]*stream, len(s.streams))
	for name, st := range s.streams {
		streams[name] = st
	}
	s.mu.Unlock()

	var firstErr error
	for name, st := range streams {
		st.mu.Lock()
		err := s.sealLocked(ctx, name, st)
		st.mu.Unlock()
		if err != nil {
			s.logger.Error("seal segment failed", "stream", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// sealLocked finalizes the open segment of st: the registry sees its final
// compressed size, the data goes to storage and the carry value advances. A
// segment that fails to persist is discarded without advancing the carry, so
// the next segment overwrites its compressed contribution. A stream deleted
// since its last append is forgotten. Caller holds st.mu.
func (s *Service) sealLocked(ctx context.Context, name string, st *stream) error {
	seg := st.seg
	if seg.empty() {
		return nil
	}
	defer seg.reset()

	data, err := seg.seal()
	if err != nil {
		s.observer.SegmentFailed(name)
		return err
	}
	if err := s.registry.UpdateStats(name, 0, uint64(len(data))); err != nil {
		if errors.Is(err, metadata.ErrStreamMetaNotFound) {
			s.dropStream(name, st)
			return nil
		}
		return err
	}
	if err := s.store.PutSegment(ctx, name, seg.id, data); err != nil {
		s.observer.SegmentFailed(name)
		return fmt.Errorf("persist segment %s: %w", seg.id, err)
	}
	if err := s.registry.FinalizeSegment(name); err != nil {
		return err
	}

	s.observer.SegmentFinalized(name, len(data))
	s.logger.Debug("segment sealed", "stream", name, "segment", seg.id, "events", seg.events, "compressed_bytes", len(data))
	return nil
}
