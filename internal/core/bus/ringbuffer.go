// If you are AI: This file implements a lock-free ring buffer for tail subscriber event delivery.
// Both cursors run free and are only masked when indexing the slot array, so
// head == tail always means empty, even after the uint32 counters wrap.

package bus

import (
	"sync/atomic"
)

// BackpressureStrategy defines how the ring buffer handles overflow.
type BackpressureStrategy uint8

const (
	// BackpressureDropOldest evicts the oldest event when the buffer is full.
	BackpressureDropOldest BackpressureStrategy = iota
	// BackpressureDropNewest rejects the incoming event when the buffer is full.
	BackpressureDropNewest
)

// RingBuffer is a bounded single-producer, single-consumer queue of events.
// Ingestion never blocks on it: overflow is resolved by the strategy.
type RingBuffer struct {
	slots    []*Event
	size     uint32 // power of two
	mask     uint32
	head     uint32 // next write, atomic
	tail     uint32 // next read, atomic
	strategy BackpressureStrategy
	dropped  uint64 // atomic
}

// NewRingBuffer creates a ring buffer holding at least capacity events.
// Capacity is rounded up to a power of two.
func NewRingBuffer(capacity uint32, strategy BackpressureStrategy) *RingBuffer {
	size := uint32(1)
	for size < capacity {
		size <<= 1
	}

	return &RingBuffer{
		slots:    make([]*Event, size),
		size:     size,
		mask:     size - 1,
		strategy: strategy,
	}
}

// Write enqueues ev. It returns false only when the event was rejected
// under BackpressureDropNewest.
// Lock expectations: single writer; the ingest path holds the stream's segment lock.
func (rb *RingBuffer) Write(ev *Event) bool {
	if ev == nil {
		return false
	}

	head := atomic.LoadUint32(&rb.head)
	tail := atomic.LoadUint32(&rb.tail)

	if head-tail >= rb.size {
		atomic.AddUint64(&rb.dropped, 1)
		if rb.strategy == BackpressureDropNewest {
			return false
		}
		atomic.AddUint32(&rb.tail, 1)
	}

	rb.slots[head&rb.mask] = ev
	atomic.StoreUint32(&rb.head, head+1)
	return true
}

// Read dequeues the oldest event, or returns false if the buffer is empty.
// Lock expectations: single reader (the tail connection goroutine).
func (rb *RingBuffer) Read() (*Event, bool) {
	tail := atomic.LoadUint32(&rb.tail)
	head := atomic.LoadUint32(&rb.head)

	if tail == head {
		return nil, false
	}

	ev := rb.slots[tail&rb.mask]
	atomic.AddUint32(&rb.tail, 1)
	return ev, true
}

// Len returns the number of buffered events.
func (rb *RingBuffer) Len() uint32 {
	return atomic.LoadUint32(&rb.head) - atomic.LoadUint32(&rb.tail)
}

// Available returns the number of free slots.
func (rb *RingBuffer) Available() uint32 {
	return rb.size - rb.Len()
}

// Dropped returns the number of events lost to backpressure.
func (rb *RingBuffer) Dropped() uint64 {
	return atomic.LoadUint64(&rb.dropped)
}
