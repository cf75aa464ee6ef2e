// If you are AI: This file implements the Registry, the shared map of stream name to StreamMetadata.
// The registry is the single source of truth consulted on every ingest and query request.

package metadata

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry maps stream names to their metadata records.
// Lock expectations: one RWMutex over the whole map. Readers run concurrently,
// every writer excludes all readers and writers for a single map operation.
// No I/O is performed while the lock is held.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]StreamMetadata
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by Load.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
// It is populated by Load during startup and by the mutators afterwards.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		streams: make(map[string]StreamMetadata),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schema returns the schema text of a stream.
func (r *Registry) Schema(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.streams[name]
	if !ok {
		return "", notFound(name)
	}
	return meta.Schema, nil
}

// Alert returns the alert config text of a stream.
func (r *Registry) Alert(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.streams[name]
	if !ok {
		return "", notFound(name)
	}
	return meta.AlertConfig, nil
}

// Get returns a copy of the full record for a stream.
// The copy is taken under one read lock, so schema and alert always belong to the same write.
func (r *Registry) Get(name string) (StreamMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.streams[name]
	if !ok {
		return StreamMetadata{}, notFound(name)
	}
	return meta, nil
}

// Stats returns the statistics of a stream.
func (r *Registry) Stats(name string) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.streams[name]
	if !ok {
		return Stats{}, notFound(name)
	}
	return meta.Stats, nil
}

// SetSchema replaces the schema of an existing stream.
// The alert config and stats are kept. Lookup and write share one lock
// acquisition, so a concurrent DeleteStream is never undone.
func (r *Registry) SetSchema(name, schema string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.streams[name]
	if !ok {
		return notFound(name)
	}
	meta.Schema = schema
	r.streams[name] = meta
	return nil
}

// SetAlert replaces the alert config of an existing stream.
// The schema and stats are kept.
func (r *Registry) SetAlert(name, alertConfig string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.streams[name]
	if !ok {
		return notFound(name)
	}
	meta.AlertConfig = alertConfig
	r.streams[name] = meta
	return nil
}

// AddStream inserts a fresh record with default stats.
// Any existing record for name is replaced, including its stats.
func (r *Registry) AddStream(name, schema, alertConfig string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.streams[name] = StreamMetadata{
		Schema:      schema,
		AlertConfig: alertConfig,
	}
}

// DeleteStream removes a stream. Removing an unknown stream is a no-op.
func (r *Registry) DeleteStream(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, name)
}

// UpdateStats applies Stats.Update to a stream in place.
func (r *Registry) UpdateStats(name string, size, compressedSize uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.streams[name]
	if !ok {
		return notFound(name)
	}
	meta.Stats.Update(size, compressedSize)
	r.streams[name] = meta
	return nil
}

// FinalizeSegment applies Stats.Rollover to a stream.
// Must be called exactly once per finalized segment, after its last UpdateStats.
func (r *Registry) FinalizeSegment(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.streams[name]
	if !ok {
		return notFound(name)
	}
	meta.Stats.Rollover()
	r.streams[name] = meta
	return nil
}

// Contains reports whether a record exists for name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.streams[name]
	return ok
}

// Len returns the number of known streams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// Streams returns all stream names in lexical order.
func (r *Registry) Streams() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the whole map taken under one read lock.
func (r *Registry) Snapshot() map[string]StreamMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]StreamMetadata, len(r.streams))
	for name, meta := range r.streams {
		out[name] = meta
	}
	return out
}

// insert stores a record built by Load.
func (r *Registry) insert(name string, meta StreamMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[name] = meta
}
