// Package events is a minimal in-process publish/subscribe bus.
// Delivery is synchronous fan-out to the handlers registered at publish
// time; there is no persistence, retry or backpressure.
package events

import "sync"

// Handler receives the payload given to Publish.
type Handler func(payload any)

// Bus routes named events to subscribed handlers. Construct one at the
// simulation root and hand it to the components that emit or observe
// events; there is deliberately no package-level instance.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{listeners: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[event] = append(b.listeners[event], h)
}

// Publish delivers payload to every handler currently subscribed to the
// event, in registration order, on the caller's goroutine.
func (b *Bus) Publish(event string, payload any) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.listeners[event]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
