// If you are AI: This file implements the filesystem storage backend.
// Layout: <root>/<stream>/.schema, <root>/<stream>/.alert.json, <root>/<stream>/data/<segment>.

package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"logbook/internal/core/metadata"
	"logbook/internal/storage"
)

// Store is a storage.Backend rooted at a local directory.
// Every directory directly under the root is a stream.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create root dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// ListStreams returns one descriptor per stream directory, in lexical order.
func (s *Store) ListStreams(ctx context.Context) ([]metadata.StreamDescriptor, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read root dir: %w", err)
	}

	streams := make([]metadata.StreamDescriptor, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		streams = append(streams, metadata.StreamDescriptor{Name: entry.Name()})
	}
	return streams, nil
}

// GetSchema reads the schema blob of a stream.
func (s *Store) GetSchema(ctx context.Context, name string) ([]byte, error) {
	return s.read(name, storage.SchemaObject)
}

// GetAlert reads the alert config blob of a stream.
func (s *Store) GetAlert(ctx context.Context, name string) ([]byte, error) {
	return s.read(name, storage.AlertObject)
}

// CreateStream creates the stream directory.
func (s *Store) CreateStream(ctx context.Context, name string) error {
	dir, err := s.streamDir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, storage.SegmentPrefix), 0o755); err != nil {
		return fmt.Errorf("create stream dir: %w", err)
	}
	return nil
}

// DeleteStream removes the stream directory and its contents.
func (s *Store) DeleteStream(ctx context.Context, name string) error {
	dir, err := s.streamDir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove stream dir: %w", err)
	}
	return nil
}

// PutSchema replaces the schema blob of a stream.
func (s *Store) PutSchema(ctx context.Context, name string, schema []byte) error {
	return s.write(name, storage.SchemaObject, schema)
}

// PutAlert replaces the alert config blob of a stream.
func (s *Store) PutAlert(ctx context.Context, name string, alert []byte) error {
	return s.write(name, storage.AlertObject, alert)
}

// PutSegment stores a sealed segment under the stream's data directory.
func (s *Store) PutSegment(ctx context.Context, name, segmentID string, data []byte) error {
	if strings.ContainsAny(segmentID, `/\`) || segmentID == "" {
		return fmt.Errorf("invalid segment id %q", segmentID)
	}
	return s.write(name, filepath.Join(storage.SegmentPrefix, segmentID), data)
}

// Close is a no-op for the filesystem backend.
func (s *Store) Close() error {
	return nil
}

// streamDir resolves a stream directory, rejecting names that escape the root.
func (s *Store) streamDir(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid stream name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

// read returns the contents of an object, mapping a missing file to ErrObjectNotFound.
func (s *Store) read(name, object string) ([]byte, error) {
	dir, err := s.streamDir(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, object))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.NotFound(name, object)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", name, object, err)
	}
	return data, nil
}

// write stores an object atomically via a temp file and rename.
// The stream directory must exist.
func (s *Store) write(name, object string, data []byte) error {
	dir, err := s.streamDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.NotFound(name, "")
		}
		return fmt.Errorf("stat stream dir: %w", err)
	}

	path := filepath.Join(dir, object)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", name, object, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s/%s: %w", name, object, err)
	}
	return nil
}

var _ storage.Backend = (*Store)(nil)
