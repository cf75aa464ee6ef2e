// If you are AI: This file implements the bootstrap load that hydrates the registry from durable storage.
// Per-stream fetch failures are absorbed; only a failure to enumerate streams aborts the load.

package metadata

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// StreamDescriptor describes a stream as reported by storage.
type StreamDescriptor struct {
	Name string `json:"name"`
}

// Source is the read side of durable storage consumed by Load.
type Source interface {
	// ListStreams returns every stream known to storage.
	ListStreams(ctx context.Context) ([]StreamDescriptor, error)
	// GetSchema returns the raw schema blob of a stream.
	GetSchema(ctx context.Context, name string) ([]byte, error)
	// GetAlert returns the raw alert config blob of a stream.
	GetAlert(ctx context.Context, name string) ([]byte, error)
}

// errInvalidUTF8 is returned by decodeText for non UTF-8 blobs.
var errInvalidUTF8 = errors.New("blob is not valid utf-8")

// Load seeds the registry with every stream listed by src.
// Each stream gets default stats; a missing or undecodable schema or alert is
// replaced by an empty string. Existing entries with the same name are
// overwritten, entries not reported by src are left alone.
// Storage fetches run without holding the registry lock.
func (r *Registry) Load(ctx context.Context, src Source) error {
	streams, err := src.ListStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	for _, stream := range streams {
		if err := ctx.Err(); err != nil {
			return err
		}

		alertConfig, err := fetchText(ctx, stream.Name, src.GetAlert, ErrAlertNotInStore)
		if err != nil {
			r.logger.Debug("alert config unavailable, using empty default", "stream", stream.Name, "error", err)
		}

		schema, err := fetchText(ctx, stream.Name, src.GetSchema, ErrSchemaNotInStore)
		if err != nil {
			r.logger.Debug("schema unavailable, using empty default", "stream", stream.Name, "error", err)
		}

		r.insert(stream.Name, StreamMetadata{
			Schema:      schema,
			AlertConfig: alertConfig,
		})
	}

	r.logger.Info("stream metadata loaded", "streams", len(streams))
	return nil
}

// fetchText fetches one blob and decodes it. Any failure is reported as kind.
func fetchText(ctx context.Context, name string, fetch func(context.Context, string) ([]byte, error), kind error) (string, error) {
	raw, err := fetch(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", &StreamError{Name: name, Err: kind}, err)
	}
	text, err := decodeText(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", &StreamError{Name: name, Err: kind}, err)
	}
	return text, nil
}

// decodeText converts a storage blob to text, rejecting invalid UTF-8.
func decodeText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return string(raw), nil
}
