// If you are AI: This file contains unit tests for the metadata registry.

package metadata

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistryAddStream(t *testing.T) {
	cases := []struct {
		name        string
		stream      string
		schema      string
		alertConfig string
	}{
		{"stream_schema_alert", "teststream", "schema", "alert_config"},
		{"stream_only", "teststream", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			reg.AddStream(tc.stream, tc.schema, tc.alertConfig)

			want := map[string]StreamMetadata{
				tc.stream: {Schema: tc.schema, AlertConfig: tc.alertConfig},
			}
			if got := reg.Snapshot(); !reflect.DeepEqual(got, want) {
				t.Errorf("Expected %+v, got %+v", want, got)
			}
		})
	}
}

func TestRegistryAddStreamReplacesStats(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("s", "schema", "alert")
	if err := reg.UpdateStats("s", 10, 5); err != nil {
		t.Fatalf("UpdateStats failed: %v", err)
	}

	reg.AddStream("s", "other", "")

	meta, err := reg.Get("s")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if meta != (StreamMetadata{Schema: "other"}) {
		t.Errorf("Expected fresh record, got %+v", meta)
	}
}

func TestRegistryDeleteStream(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("teststream", "", "")

	reg.DeleteStream("teststream")
	if reg.Contains("teststream") {
		t.Error("Stream should be removed")
	}

	// Second delete is a no-op
	reg.DeleteStream("teststream")
	if reg.Len() != 0 {
		t.Errorf("Expected 0 streams, got %d", reg.Len())
	}
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Schema("missing"); !errors.Is(err, ErrStreamMetaNotFound) {
		t.Errorf("Schema: expected not found, got %v", err)
	}
	if _, err := reg.Alert("missing"); !errors.Is(err, ErrStreamMetaNotFound) {
		t.Errorf("Alert: expected not found, got %v", err)
	}
	if err := reg.UpdateStats("missing", 1, 1); !errors.Is(err, ErrStreamMetaNotFound) {
		t.Errorf("UpdateStats: expected not found, got %v", err)
	}
	if err := reg.SetSchema("missing", "schema"); !errors.Is(err, ErrStreamMetaNotFound) {
		t.Errorf("SetSchema: expected not found, got %v", err)
	}
	if err := reg.SetAlert("missing", "alert"); !errors.Is(err, ErrStreamMetaNotFound) {
		t.Errorf("SetAlert: expected not found, got %v", err)
	}
	if err := reg.FinalizeSegment("missing"); !IsNotFound(err) {
		t.Errorf("FinalizeSegment: expected not found, got %v", err)
	}
	if _, err := reg.Stats("missing"); !IsNotFound(err) {
		t.Errorf("Stats: expected not found, got %v", err)
	}

	var streamErr *StreamError
	_, err := reg.Get("missing")
	if !errors.As(err, &streamErr) {
		t.Fatalf("Expected *StreamError, got %T", err)
	}
	if streamErr.Name != "missing" {
		t.Errorf("Expected name missing, got %q", streamErr.Name)
	}

	// A miss must not create an entry
	if reg.Len() != 0 {
		t.Errorf("Expected empty registry, got %d streams", reg.Len())
	}
}

func TestRegistrySetSchemaKeepsAlertAndStats(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("s", "", "alert")
	if err := reg.UpdateStats("s", 100, 40); err != nil {
		t.Fatalf("UpdateStats failed: %v", err)
	}

	if err := reg.SetSchema("s", "schema"); err != nil {
		t.Fatalf("SetSchema failed: %v", err)
	}

	meta, _ := reg.Get("s")
	if meta.Schema != "schema" || meta.AlertConfig != "alert" {
		t.Errorf("Unexpected record %+v", meta)
	}
	if meta.Stats.Size != 100 || meta.Stats.CompressedSize != 40 {
		t.Errorf("Stats should be preserved, got %+v", meta.Stats)
	}
}

func TestRegistrySetAlertKeepsSchemaAndStats(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("s", "schema", "")
	if err := reg.UpdateStats("s", 7, 3); err != nil {
		t.Fatalf("UpdateStats failed: %v", err)
	}

	if err := reg.SetAlert("s", "alert"); err != nil {
		t.Fatalf("SetAlert failed: %v", err)
	}

	alert, err := reg.Alert("s")
	if err != nil || alert != "alert" {
		t.Errorf("Expected alert, got %q (%v)", alert, err)
	}
	schema, err := reg.Schema("s")
	if err != nil || schema != "schema" {
		t.Errorf("Expected schema, got %q (%v)", schema, err)
	}
	stats, _ := reg.Stats("s")
	if stats.Size != 7 || stats.CompressedSize != 3 {
		t.Errorf("Stats should be preserved, got %+v", stats)
	}
}

func TestRegistryUpdateStatsAndFinalize(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("s", "", "")

	// Two updates within one segment overwrite the compressed contribution
	reg.UpdateStats("s", 100, 40)
	reg.UpdateStats("s", 100, 60)
	if err := reg.FinalizeSegment("s"); err != nil {
		t.Fatalf("FinalizeSegment failed: %v", err)
	}
	// Next segment accumulates on top
	reg.UpdateStats("s", 10, 5)

	stats, _ := reg.Stats("s")
	want := Stats{Size: 210, CompressedSize: 65, PrevCompressed: 60}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}

func TestRegistryStreamsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("zeta", "", "")
	reg.AddStream("alpha", "", "")
	reg.AddStream("mid", "", "")

	want := []string{"alpha", "mid", "zeta"}
	if got := reg.Streams(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.AddStream("s", "schema", "")

	snap := reg.Snapshot()
	snap["s"] = StreamMetadata{Schema: "mutated"}
	delete(snap, "s")

	schema, _ := reg.Schema("s")
	if schema != "schema" {
		t.Errorf("Snapshot mutation leaked into registry: %q", schema)
	}
}
