// If you are AI: This file decodes ingest request bodies and infers a schema from the first event.
// Schema inference is deliberately shallow: top-level field names and JSON kinds.

package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidEvent is returned for bodies that are not a JSON object or array of objects.
var ErrInvalidEvent = errors.New("invalid event")

// Field is one top-level field of an inferred schema.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the inferred shape of a stream's events.
type Schema struct {
	Fields []Field `json:"fields"`
}

// decodeEvents splits a body into compact JSON objects.
// A body is either one object or an array of objects.
func decodeEvents(body []byte) ([][]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidEvent)
	}

	var raws []json.RawMessage
	switch trimmed[0] {
	case '{':
		raws = []json.RawMessage{trimmed}
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	default:
		return nil, fmt.Errorf("%w: body must be a JSON object or array", ErrInvalidEvent)
	}

	events := make([][]byte, 0, len(raws))
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidEvent, i)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidEvent, i, err)
		}
		events = append(events, buf.Bytes())
	}
	return events, nil
}

// InferSchema derives a schema from one JSON object.
func InferSchema(event []byte) (Schema, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(event, &obj); err != nil {
		return Schema{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	fields := make([]Field, 0, len(obj))
	for name, raw := range obj {
		fields = append(fields, Field{Name: name, Type: kindOf(raw)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return Schema{Fields: fields}, nil
}

// kindOf classifies a JSON value by its first byte.
func kindOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "null"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
