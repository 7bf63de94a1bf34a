package tokens

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// EventType for live token events
type EventType string

const (
	EventOptimistic EventType = "optimistic"
	EventConfirmed  EventType = "confirmed"
	EventFailed     EventType = "failed"
	EventLoaded     EventType = "loaded"
)

// Event is one overlay transition.
type Event struct {
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
	RequestID uint64    `json:"requestId,omitempty"`
	View      *View     `json:"view,omitempty"`
	Views     []View    `json:"views,omitempty"`
	Error     string    `json:"error,omitempty"`
}

const subscriberBuffer = 64

// Hub fans overlay events out to the live connections of one session.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns a channel of events for sessionKey and a function that
// ends the subscription and closes the channel.
func (h *Hub) Subscribe(sessionKey string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	if h.subs[sessionKey] == nil {
		h.subs[sessionKey] = make(map[chan Event]struct{})
	}
	h.subs[sessionKey][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[sessionKey]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, sessionKey)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (h *Hub) Publish(sessionKey string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[sessionKey] {
		select {
		case ch <- ev:
		default:
			log.Warn().Str("session", sessionKey).Str("event", string(ev.Type)).Msg("Token event dropped")
		}
	}
}

// Subscribers returns the number of live subscriptions for sessionKey.
func (h *Hub) Subscribers(sessionKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionKey])
}
