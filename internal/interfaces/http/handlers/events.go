package handlers

import (
	"sync"

	"github.com/turtacn/pairgate/internal/pairing"
)

// Hub fans pairing decision events out to connected operator consoles, so
// every approver UI converges on a request's outcome regardless of which
// console resolved it. Slow consumers are skipped rather than blocking the
// publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan pairing.DecisionEvent]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan pairing.DecisionEvent]struct{}),
	}
}

// Subscribe registers a new consumer and returns its event channel plus an
// unsubscribe function. The channel is buffered; events that arrive while
// the buffer is full are dropped for that consumer.
func (h *Hub) Subscribe() (<-chan pairing.DecisionEvent, func()) {
	ch := make(chan pairing.DecisionEvent, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish delivers an event to every current subscriber.
func (h *Hub) Publish(event pairing.DecisionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

//Personal.AI order the ending
