// If you are AI: This file documents the metadata package.

// Package metadata holds the in-process registry of log streams.
//
// The registry is updated
//  1. during server start up (Load),
//  2. when a new stream is created (AddStream),
//  3. when a stream is deleted (DeleteStream),
//  4. when the first event is sent to a stream (SetSchema),
//  5. when the alert API is called (SetAlert),
//  6. on every ingest and segment finalize (UpdateStats, FinalizeSegment).
//
// A Registry is constructed once by the entrypoint and passed to every
// component that needs it; there is no package-level instance.
package metadata
