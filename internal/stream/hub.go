// Package stream pushes live state snapshots to connected clients,
// standing in for the realtime listeners of the original document store.
package stream

import (
	"strings"
	"sync"
)

// Hub fans mutation signals out to subscribers, keyed by scope. Signals
// carry no payload and coalesce: a subscriber that has a pending signal
// does not queue more, it just re-reads state once.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[*Subscription]struct{}{}}
}

// Subscription delivers change signals for one scope key.
type Subscription struct {
	hub *Hub
	key string
	ch  chan struct{}
}

// C fires when the subscribed scope changed since the last read.
func (s *Subscription) C() <-chan struct{} { return s.ch }

func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if set, ok := s.hub.subs[s.key]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, s.key)
		}
	}
}

func (h *Hub) Subscribe(key string) *Subscription {
	s := &Subscription{hub: h, key: key, ch: make(chan struct{}, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[key]
	if !ok {
		set = map[*Subscription]struct{}{}
		h.subs[key] = set
	}
	set[s] = struct{}{}
	return s
}

// Notify signals every subscriber of the scope key. Never blocks.
func (h *Hub) Notify(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	signalAll(h.subs[key])
}

// NotifyUser signals every subscriber whose scope belongs to the user:
// the personal key and all of the user's project-scoped keys.
func (h *Hub) NotifyUser(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prefix := userID + "/"
	for key, set := range h.subs {
		if key == userID || strings.HasPrefix(key, prefix) {
			signalAll(set)
		}
	}
}

func signalAll(set map[*Subscription]struct{}) {
	for s := range set {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports the live subscription count for a scope key.
func (h *Hub) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
