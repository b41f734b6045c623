package notifier_test

import (
	"testing"
	"time"

	"docflow/internal/notifier"
	"docflow/internal/registry"
)

func sampleDocument(id string) *registry.Document {
	return &registry.Document{
		ID:     id,
		Name:   "doc.txt",
		Status: registry.StatusIngested,
		Entities: map[string]any{
			"keywords": []any{"invoice"},
		},
	}
}

func collect(t *testing.T, sub *notifier.Subscription, want int) []notifier.Event {
	t.Helper()
	events := make([]notifier.Event, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				t.Fatalf("stream closed after %d of %d events", len(events), want)
			}
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), want)
		}
	}
	return events
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()

	first := hub.Subscribe()
	second := hub.Subscribe()

	hub.Publish(notifier.NewEvent(notifier.EventDocumentCreated, sampleDocument("doc-1"), "", ""))

	for _, sub := range []*notifier.Subscription{first, second} {
		events := collect(t, sub, 1)
		if events[0].Type != notifier.EventDocumentCreated {
			t.Fatalf("type = %s", events[0].Type)
		}
		if events[0].Document.ID != "doc-1" {
			t.Fatalf("document id = %s", events[0].Document.ID)
		}
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	types := []notifier.EventType{
		notifier.EventDocumentCreated,
		notifier.EventStatusChanged,
		notifier.EventStatusChanged,
		notifier.EventDocumentRouted,
	}
	for _, eventType := range types {
		hub.Publish(notifier.NewEvent(eventType, sampleDocument("doc-1"), "", ""))
	}

	events := collect(t, sub, len(types))
	for i, event := range events {
		if event.Type != types[i] {
			t.Fatalf("events[%d].Type = %s, want %s", i, event.Type, types[i])
		}
	}
}

// A subscriber that never reads must not stall publishing or other
// subscribers.
func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()

	stalled := hub.Subscribe()
	_ = stalled
	active := hub.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			hub.Publish(notifier.NewEvent(notifier.EventStatusChanged, sampleDocument("doc-1"), "extract", ""))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}

	collect(t, active, 500)
}

func TestEventSnapshotIsIsolated(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	doc := sampleDocument("doc-1")
	hub.Publish(notifier.NewEvent(notifier.EventDocumentCreated, doc, "", ""))

	doc.Status = registry.StatusRouted
	doc.Entities["keywords"] = []any{"mutated"}

	events := collect(t, sub, 1)
	if events[0].Document.Status != registry.StatusIngested {
		t.Fatal("event saw a later status mutation")
	}
	keywords := events[0].Document.Entities["keywords"].([]any)
	if keywords[0] != "invoice" {
		t.Fatal("event saw a later entity mutation")
	}
}

func TestCloseSubscriptionClosesStream(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed stream")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close")
	}

	if hub.SubscriberCount() != 0 {
		t.Fatalf("subscriber count = %d", hub.SubscriberCount())
	}

	// Publishing after detach is a no-op.
	hub.Publish(notifier.NewEvent(notifier.EventStatusChanged, sampleDocument("doc-1"), "", ""))
}
