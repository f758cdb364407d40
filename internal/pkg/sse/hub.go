package sse

import (
	"sync"
)

// Event is pushed to every open stream of its recipient.
type Event struct {
	Name string
	Data interface{}
}

// Hub fans events out to the open streams of each recipient, keyed by email.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe opens a stream for recipient. The returned cleanup closes the
// channel and must be called once the stream ends.
func (h *Hub) Subscribe(recipient string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[recipient] == nil {
		h.subscribers[recipient] = make(map[chan Event]struct{})
	}
	h.subscribers[recipient][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[recipient], ch)
			close(ch)
			if len(h.subscribers[recipient]) == 0 {
				delete(h.subscribers, recipient)
			}
		})
	}

	return ch, cleanup
}

// Publish never blocks: a stream whose buffer is full misses the event.
func (h *Hub) Publish(recipient string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[recipient] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of open streams of recipient.
func (h *Hub) SubscriberCount(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipient])
}
