// If you are AI: This file implements Topic, the per-stream fanout of ingested events.
// Publish assigns sequence numbers and copies the subscriber set before delivering.

package bus

import (
	"sync"
)

// Topic fans events of one stream out to its subscribers.
// Lock expectations: mu guards the subscriber map only; delivery happens outside it.
type Topic struct {
	name        string
	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextSubID   uint64
	seq         uint64
}

// NewTopic creates a topic for the named stream.
func NewTopic(name string) *Topic {
	return &Topic{
		name:        name,
		subscribers: make(map[uint64]*Subscriber),
		nextSubID:   1,
	}
}

// Name returns the stream name.
func (t *Topic) Name() string {
	return t.name
}

// Subscribe attaches a new subscriber with a bounded buffer.
func (t *Topic) Subscribe(capacity uint32, strategy BackpressureStrategy) *Subscriber {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := NewSubscriber(t.nextSubID, capacity, strategy)
	t.nextSubID++
	t.subscribers[sub.ID()] = sub
	return sub
}

// Unsubscribe detaches a subscriber.
func (t *Topic) Unsubscribe(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, id)
}

// Publish stamps ev with the next sequence number and delivers it to every subscriber.
// Lock expectations: callers serialize Publish per topic (single producer).
func (t *Topic) Publish(ev *Event) {
	if ev == nil {
		return
	}

	t.mu.Lock()
	t.seq++
	ev.Seq = t.seq
	subs := make([]*Subscriber, 0, len(t.subscribers))
	for _, sub := range t.subscribers {
		subs = append(subs, sub)
	}
	t.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
}

// Close detaches every subscriber and signals them through Done.
func (t *Topic) Close() {
	t.mu.Lock()
	subs := t.subscribers
	t.subscribers = make(map[uint64]*Subscriber)
	t.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// SubscriberCount returns the number of attached subscribers.
func (t *Topic) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers)
}

// IsEmpty reports whether the topic has no subscribers.
func (t *Topic) IsEmpty() bool {
	return t.SubscriberCount() == 0
}
