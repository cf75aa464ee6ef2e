// If you are AI: This file contains unit tests for topic fanout and the hub.

package bus

import (
	"testing"
)

func TestTopicPublishFanout(t *testing.T) {
	topic := NewTopic("app")
	sub1 := topic.Subscribe(8, BackpressureDropOldest)
	sub2 := topic.Subscribe(8, BackpressureDropOldest)

	if sub1.ID() == sub2.ID() {
		t.Fatal("Subscriber IDs must be unique")
	}

	topic.Publish(NewEvent("app", []byte(`{"a":1}`)))
	topic.Publish(NewEvent("app", []byte(`{"a":2}`)))

	for _, sub := range []*Subscriber{sub1, sub2} {
		select {
		case <-sub.Ready():
		default:
			t.Errorf("Subscriber %d should be signalled", sub.ID())
		}

		var seqs []uint64
		sub.SetEventHandler(func(ev *Event) { seqs = append(seqs, ev.Seq) })
		if n := sub.Process(10); n != 2 {
			t.Errorf("Expected 2 events, got %d", n)
		}
		if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
			t.Errorf("Unexpected sequence numbers %v", seqs)
		}
	}
}

func TestTopicUnsubscribe(t *testing.T) {
	topic := NewTopic("app")
	sub := topic.Subscribe(8, BackpressureDropOldest)

	topic.Unsubscribe(sub.ID())
	if !topic.IsEmpty() {
		t.Error("Topic should be empty after unsubscribe")
	}

	topic.Publish(NewEvent("app", nil))
	if sub.Buffer().Len() != 0 {
		t.Error("Detached subscriber should not receive events")
	}
}

func TestNewEventCopiesBody(t *testing.T) {
	body := []byte("abc")
	ev := NewEvent("app", body)
	body[0] = 'x'
	if string(ev.Body) != "abc" {
		t.Errorf("Event body aliased caller buffer: %q", ev.Body)
	}
}

func TestHubLifecycle(t *testing.T) {
	hub := NewHub()

	topic1, created := hub.GetOrCreate("app")
	if !created || topic1 == nil {
		t.Fatal("First GetOrCreate should create a topic")
	}
	topic2, created := hub.GetOrCreate("app")
	if created || topic1 != topic2 {
		t.Error("Second GetOrCreate should return the same topic")
	}

	if hub.Get("missing") != nil {
		t.Error("Get should return nil for unknown topic")
	}

	sub := topic1.Subscribe(4, BackpressureDropOldest)
	if hub.RemoveIfEmpty("app") {
		t.Error("RemoveIfEmpty should keep a topic with subscribers")
	}

	hub.Publish(NewEvent("app", []byte("x")))
	hub.Publish(NewEvent("other", []byte("y")))
	if sub.Buffer().Len() != 1 {
		t.Errorf("Expected 1 buffered event, got %d", sub.Buffer().Len())
	}

	topic1.Unsubscribe(sub.ID())
	if !hub.RemoveIfEmpty("app") {
		t.Error("RemoveIfEmpty should drop an empty topic")
	}
	if hub.Count() != 0 {
		t.Errorf("Expected 0 topics, got %d", hub.Count())
	}
}

func TestHubRemoveAndList(t *testing.T) {
	hub := NewHub()
	hub.GetOrCreate("b")
	topic, _ := hub.GetOrCreate("a")
	topic.Subscribe(4, BackpressureDropOldest)

	names := hub.List()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Unexpected topics %v", names)
	}

	hub.Remove("a")
	if hub.Get("a") != nil {
		t.Error("Remove should drop topics with subscribers")
	}
}

// BenchmarkPublishSingleSubscriber measures the ingest-side cost of fanout.
func BenchmarkPublishSingleSubscriber(b *testing.B) {
	topic := NewTopic("bench")
	sub := topic.Subscribe(1024, BackpressureDropOldest)
	ev := NewEvent("bench", make([]byte, 256))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		topic.Publish(ev)
		sub.Buffer().Read()
	}
}

func TestHubSubscribe(t *testing.T) {
	hub := NewHub()

	topic, sub := hub.Subscribe("app", 4, BackpressureDropOldest)
	if hub.Get("app") != topic {
		t.Fatal("Subscribe should register the topic")
	}
	if topic.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", topic.SubscriberCount())
	}

	hub.Publish(NewEvent("app", []byte(`{"a":1}`)))
	if sub.Buffer().Len() != 1 {
		t.Errorf("Expected 1 buffered event, got %d", sub.Buffer().Len())
	}

	again, _ := hub.Subscribe("app", 4, BackpressureDropOldest)
	if again != topic {
		t.Error("Second Subscribe should reuse the topic")
	}
}

func TestHubRemoveClosesSubscribers(t *testing.T) {
	hub := NewHub()
	topic, sub := hub.Subscribe("app", 4, BackpressureDropOldest)
	hub.Publish(NewEvent("app", []byte("last")))

	hub.Remove("app")

	select {
	case <-sub.Done():
	default:
		t.Fatal("Remove should close attached subscribers")
	}
	if !topic.IsEmpty() {
		t.Errorf("Closed topic should have no subscribers, got %d", topic.SubscriberCount())
	}
	if ev, ok := sub.Buffer().Read(); !ok || string(ev.Body) != "last" {
		t.Error("Buffered events should stay readable after close")
	}

	topic.Close()
	hub.Remove("app")
}
