// If you are AI: This file defines the error taxonomy of the metadata registry.

package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamMetaNotFound is returned when no record exists for a stream.
	ErrStreamMetaNotFound = errors.New("stream metadata not found")
	// ErrSchemaNotInStore marks a schema that could not be fetched or decoded during load.
	ErrSchemaNotInStore = errors.New("schema not found in store")
	// ErrAlertNotInStore marks an alert config that could not be fetched or decoded during load.
	ErrAlertNotInStore = errors.New("alert config not found in store")
)

// StreamError attaches the stream name to one of the sentinel errors above.
type StreamError struct {
	Name string
	Err  error
}

// Error returns "<kind>: <stream>".
func (e *StreamError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Name)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// notFound builds the lookup-miss error for name.
func notFound(name string) error {
	return &StreamError{Name: name, Err: ErrStreamMetaNotFound}
}

// IsNotFound reports whether err is a registry lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStreamMetaNotFound)
}
