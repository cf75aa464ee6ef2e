// If you are AI: This file defines the durable storage contract shared by all backends.
// Backends persist opaque schema/alert blobs and sealed segments; they never interpret them.

package storage

import (
	"context"
	"errors"
	"fmt"

	"logbook/internal/core/metadata"
)

// ErrObjectNotFound is returned by backends when a blob does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object names used by backends that lay out blobs per stream.
const (
	SchemaObject  = ".schema"
	AlertObject   = ".alert.json"
	SegmentPrefix = "data"
)

// Backend is the durable store behind the registry.
// The read side is what the bootstrap load consumes.
type Backend interface {
	metadata.Source

	// CreateStream registers an empty stream. Creating an existing stream is a no-op.
	CreateStream(ctx context.Context, name string) error
	// DeleteStream removes a stream and everything stored under it.
	DeleteStream(ctx context.Context, name string) error
	// PutSchema replaces the schema blob of a stream.
	PutSchema(ctx context.Context, name string, schema []byte) error
	// PutAlert replaces the alert config blob of a stream.
	PutAlert(ctx context.Context, name string, alert []byte) error
	// PutSegment stores a sealed, compressed segment.
	PutSegment(ctx context.Context, name, segmentID string, data []byte) error
	// Close releases backend resources.
	Close() error
}

// NotFound wraps ErrObjectNotFound with the missing object's location.
func NotFound(stream, object string) error {
	return fmt.Errorf("%s/%s: %w", stream, object, ErrObjectNotFound)
}
