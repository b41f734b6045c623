package notifier

import (
	"sync"
)

// Hub fans events out to every active subscription. Publish appends to each
// subscriber's private queue and returns immediately; a dedicated pump
// goroutine per subscription drains the queue into its channel in order.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber. The caller must drain Events until it
// calls Close, after which the channel is closed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		hub:    h,
		events: make(chan Event),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go sub.pump()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.Close()
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every subscription. It never blocks on a
// slow consumer.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.enqueue(event)
	}
}

// SubscriberCount reports how many subscriptions are active.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close tears down every subscription. Further publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Subscription is one consumer's view of the event stream.
type Subscription struct {
	hub    *Hub
	events chan Event
	done   chan struct{}
	wake   chan struct{}

	mu        sync.Mutex
	queue     []Event
	closeOnce sync.Once
}

// Events returns the ordered event stream. The channel is closed when the
// subscription or its hub shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription. Queued but undelivered events are dropped.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.hub != nil {
			s.hub.remove(s)
		}
		close(s.done)
	})
}

func (s *Subscription) enqueue(event Event) {
	select {
	case <-s.done:
		return
	default:
	}
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.events)
	for {
		s.mu.Lock()
		var next Event
		have := len(s.queue) > 0
		if have {
			next = s.queue[0]
			s.queue = s.queue[1:]
		}
		s.mu.Unlock()

		if !have {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.events <- next:
		case <-s.done:
			return
		}
	}
}
