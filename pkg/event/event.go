// Package event provides an in-process publish/subscribe bus.
package event

import (
	"sync"

	"github.com/shashiranjanraj/pricebook/pkg/logger"
)

// Handler receives an event payload.
type Handler func(payload interface{})

type subscription struct {
	id uint64
	h  Handler
}

// Bus dispatches payloads to the handlers subscribed to a topic.
// The zero value is not usable; call NewBus.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[string][]subscription{}}
}

// Subscribe registers h for topic. The returned func removes it and is safe
// to call more than once.
func (b *Bus) Subscribe(topic string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic]
			for i, s := range list {
				if s.id == id {
					b.subs[topic] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
		})
	}
}

// Publish dispatches payload synchronously to every handler of topic.
// A panicking handler is logged and does not stop the others.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	hs := make([]subscription, len(b.subs[topic]))
	copy(hs, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range hs {
		dispatch(topic, s.h, payload)
	}
}

// Subscribers reports how many handlers are registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func dispatch(topic string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event: handler panicked", "topic", topic, "panic", r)
		}
	}()
	h(payload)
}
