// Package events distributes tick payloads to in-process sinks and to
// browser clients over server-sent events.
package events

import (
	"sync"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

const subscriberBuffer = 8

// Hub remembers the latest payload and fans it out to subscribers. A slow
// subscriber misses payloads instead of stalling the tick.
type Hub struct {
	mu     sync.RWMutex
	latest types.TickPayload
	seen   bool
	subs   map[chan types.TickPayload]struct{}
}

var _ interfaces.EventSink = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan types.TickPayload]struct{})}
}

// Publish implements interfaces.EventSink.
func (h *Hub) Publish(p types.TickPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = p
	h.seen = true
	for ch := range h.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// Latest returns the last published payload.
func (h *Hub) Latest() (types.TickPayload, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.seen
}

// Subscribe registers a subscriber. Call the returned func to unsubscribe;
// it closes the channel.
func (h *Hub) Subscribe() (<-chan types.TickPayload, func()) {
	ch := make(chan types.TickPayload, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
