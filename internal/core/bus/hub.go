// If you are AI: This file implements the Hub that maps stream names to live tail topics.
// Topics exist only while someone publishes or listens; they hold no metadata.

package bus

import (
	"sort"
	"sync"
)

// Hub manages the lifecycle of topics, keyed by stream name.
// Lock expectations: RWMutex over the topic map; topic internals have their own lock.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*Topic
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]*Topic),
	}
}

// GetOrCreate returns the topic for name, creating it if needed.
// The boolean is true when the topic was created by this call.
func (h *Hub) GetOrCreate(name string) (*Topic, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topic, ok := h.topics[name]; ok {
		return topic, false
	}
	topic := NewTopic(name)
	h.topics[name] = topic
	return topic, true
}

// Subscribe attaches a subscriber to the topic for name, creating the topic if needed.
// Runs under the hub lock so a concurrent RemoveIfEmpty cannot orphan the new subscriber.
func (h *Hub) Subscribe(name string, capacity uint32, strategy BackpressureStrategy) (*Topic, *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[name]
	if !ok {
		topic = NewTopic(name)
		h.topics[name] = topic
	}
	return topic, topic.Subscribe(capacity, strategy)
}

// Get returns the topic for name, or nil.
func (h *Hub) Get(name string) *Topic {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.topics[name]
}

// Publish delivers ev to the topic of its stream if one exists.
// Events for streams nobody tails are discarded.
func (h *Hub) Publish(ev *Event) {
	if topic := h.Get(ev.Stream); topic != nil {
		topic.Publish(ev)
	}
}

// Remove drops the topic for name regardless of subscribers and closes them.
// Used when a stream is deleted.
func (h *Hub) Remove(name string) {
	h.mu.Lock()
	topic, ok := h.topics[name]
	delete(h.topics, name)
	h.mu.Unlock()

	if ok {
		topic.Close()
	}
}

// RemoveIfEmpty drops the topic for name only if it has no subscribers.
func (h *Hub) RemoveIfEmpty(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[name]
	if !ok || !topic.IsEmpty() {
		return false
	}
	delete(h.topics, name)
	return true
}

// Count returns the number of topics.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}

// List returns topic names in lexical order.
func (h *Hub) List() []string {
	h.mu.RLock()
	names := make([]string, 0, len(h.topics))
	for name := range h.topics {
		names = append(names, name)
	}
	h.mu.RUnlock()

	sort.Strings(names)
	return names
}
