// If you are AI: This file contains unit tests for the bootstrap load and blob decoding.

package metadata

import (
	"context"
	"errors"
	"testing"
)

// fakeSource is an in-memory Source. Missing map keys behave like storage misses.
type fakeSource struct {
	streams []StreamDescriptor
	schemas map[string][]byte
	alerts  map[string][]byte
	listErr error
}

// ListStreams returns the configured descriptors or listErr.
func (f *fakeSource) ListStreams(ctx context.Context) ([]StreamDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.streams, nil
}

// GetSchema returns the configured schema blob.
func (f *fakeSource) GetSchema(ctx context.Context, name string) ([]byte, error) {
	b, ok := f.schemas[name]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

// GetAlert returns the configured alert blob.
func (f *fakeSource) GetAlert(ctx context.Context, name string) ([]byte, error) {
	b, ok := f.alerts[name]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func TestDecodeText(t *testing.T) {
	for _, s := range []string{"Hello world", ""} {
		if _, err := decodeText([]byte(s)); err != nil {
			t.Errorf("decodeText(%q) failed: %v", s, err)
		}
	}

	if _, err := decodeText([]byte{0xC3, 0x28}); err == nil {
		t.Error("decodeText should reject invalid utf-8")
	}
}

func TestLoadAbsorbsPerStreamFailures(t *testing.T) {
	src := &fakeSource{
		streams: []StreamDescriptor{{Name: "full"}, {Name: "no_alert"}, {Name: "bad_schema"}, {Name: "bare"}},
		schemas: map[string][]byte{
			"full":       []byte("schema-full"),
			"no_alert":   []byte("schema-no-alert"),
			"bad_schema": {0xC3, 0x28},
		},
		alerts: map[string][]byte{
			"full":       []byte("alert-full"),
			"bad_schema": []byte("alert-bad-schema"),
		},
	}

	reg := NewRegistry()
	if err := reg.Load(context.Background(), src); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]StreamMetadata{
		"full":       {Schema: "schema-full", AlertConfig: "alert-full"},
		"no_alert":   {Schema: "schema-no-alert"},
		"bad_schema": {AlertConfig: "alert-bad-schema"},
		"bare":       {},
	}
	got := reg.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("Expected %d streams, got %d", len(want), len(got))
	}
	for name, meta := range want {
		if got[name] != meta {
			t.Errorf("Stream %s: expected %+v, got %+v", name, meta, got[name])
		}
	}
}

func TestLoadPropagatesListFailure(t *testing.T) {
	listErr := errors.New("bucket unreachable")
	reg := NewRegistry()

	err := reg.Load(context.Background(), &fakeSource{listErr: listErr})
	if !errors.Is(err, listErr) {
		t.Fatalf("Expected list error, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Expected empty registry, got %d streams", reg.Len())
	}
}

func TestLoadOverwritesAndKeepsUnlisted(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("memory_only", "s", "a")
	reg.AddStream("dup", "old", "old")
	reg.UpdateStats("dup", 10, 10)

	src := &fakeSource{
		streams: []StreamDescriptor{{Name: "dup"}, {Name: "dup"}},
		schemas: map[string][]byte{"dup": []byte("new")},
		alerts:  map[string][]byte{},
	}
	if err := reg.Load(context.Background(), src); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	meta, _ := reg.Get("dup")
	if meta != (StreamMetadata{Schema: "new"}) {
		t.Errorf("Expected overwritten record, got %+v", meta)
	}
	if !reg.Contains("memory_only") {
		t.Error("Load must not remove unlisted streams")
	}
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{streams: []StreamDescriptor{{Name: "a"}}}
	reg := NewRegistry()

	if err := reg.Load(ctx, src); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if reg.Contains("a") {
		t.Error("No stream should be loaded after cancellation")
	}
}

func TestFetchTextMarksKind(t *testing.T) {
	src := &fakeSource{}
	_, err := fetchText(context.Background(), "s", src.GetAlert, ErrAlertNotInStore)
	if !errors.Is(err, ErrAlertNotInStore) {
		t.Errorf("Expected ErrAlertNotInStore, got %v", err)
	}

	src.schemas = map[string][]byte{"s": {0xC3, 0x28}}
	_, err = fetchText(context.Background(), "s", src.GetSchema, ErrSchemaNotInStore)
	if !errors.Is(err, ErrSchemaNotInStore) {
		t.Errorf("Expected ErrSchemaNotInStore, got %v", err)
	}
}
