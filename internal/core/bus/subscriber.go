// If you are AI: This file defines Subscriber, a tail consumer of one topic.
// Subscribers receive events through their own ring buffer and a wake-up channel.

package bus

import "sync"

// Subscriber represents a consumer of events from a topic.
// Each subscriber has its own ring buffer so a slow consumer never blocks ingestion.
type Subscriber struct {
	id      uint64
	buffer  *RingBuffer
	ready   chan struct{}
	done    chan struct{}
	once    sync.Once
	onEvent func(*Event)
}

// NewSubscriber creates a subscriber with the given buffer capacity and strategy.
func NewSubscriber(id uint64, capacity uint32, strategy BackpressureStrategy) *Subscriber {
	return &Subscriber{
		id:     id,
		buffer: NewRingBuffer(capacity, strategy),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber identifier, unique within its topic.
func (s *Subscriber) ID() uint64 {
	return s.id
}

// Buffer returns the subscriber's ring buffer.
func (s *Subscriber) Buffer() *RingBuffer {
	return s.buffer
}

// Ready is signalled after events are delivered. Signals coalesce.
func (s *Subscriber) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed when the topic goes away, e.g. because the stream was deleted.
// Events already buffered can still be read.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// close marks the subscriber finished. Safe to call more than once.
func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// SetEventHandler sets the callback invoked by Process for each event.
func (s *Subscriber) SetEventHandler(handler func(*Event)) {
	s.onEvent = handler
}

// deliver writes ev to the buffer and wakes the consumer without blocking.
func (s *Subscriber) deliver(ev *Event) {
	s.buffer.Write(ev)
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Process drains up to maxEvents events through the handler.
// Returns the number of events processed.
func (s *Subscriber) Process(maxEvents int) int {
	processed := 0
	for processed < maxEvents {
		ev, ok := s.buffer.Read()
		if !ok {
			break
		}
		if s.onEvent != nil {
			s.onEvent(ev)
		}
		processed++
	}
	return processed
}

// Dropped returns the number of events dropped due to backpressure.
func (s *Subscriber) Dropped() uint64 {
	return s.buffer.Dropped()
}
