package events

import (
	"context"
	"sync"

	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

// Handler reacts to an event. A returned error is logged by the bus and
// does not stop delivery to later subscribers.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	id      int
	name    string
	handler Handler
}

// Bus delivers each event synchronously to its subscribers in the order
// they subscribed. Publish returns after every handler has returned.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
	logger *log.Logger
}

func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Discard()
	}
	return &Bus{logger: logger.WithComponent(log.ComponentEvents)}
}

// Subscribe registers h under name and returns a function that removes it.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	b.logger.DebugContext(ctx, "Publishing event",
		log.FieldEvent, e.Kind,
		log.FieldEventID, e.ID,
		log.FieldCount, len(subs))

	for _, s := range subs {
		if err := s.handler(ctx, e); err != nil {
			b.logger.WarnContext(ctx, "Event handler failed",
				log.FieldEvent, e.Kind,
				log.FieldEventID, e.ID,
				"subscriber", s.name,
				log.FieldError, err)
		}
	}
}
