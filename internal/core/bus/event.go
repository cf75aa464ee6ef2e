// If you are AI: This file defines Event, the unit of ingested log data fanned out to tail subscribers.

package bus

import (
	"time"
)

// Event is one ingested log event as it was accepted by the ingest path.
// Events are shared by every subscriber of a topic and must not be modified.
type Event struct {
	Stream     string    // Stream name
	Seq        uint64    // Per-topic sequence number, starting at 1
	ReceivedAt time.Time // Ingest time
	Body       []byte    // Compact JSON encoding of the event
}

// NewEvent copies body into a new event for stream.
// The caller may reuse body after the call.
func NewEvent(stream string, body []byte) *Event {
	buf := make([]byte, len(body))
	copy(buf, body)
	return &Event{
		Stream:     stream,
		ReceivedAt: time.Now(),
		Body:       buf,
	}
}
