// Package store keeps the client-side copies of server state, one store per
// entity. Stores never call each other: a mutation publishes an event and
// the refresh coordinator re-fetches whatever the event touched.
package store

import (
	"context"
	"sync"

	"github.com/alimurrofid/petualangan-cuan/internal/events"
)

// Identifiable is implemented by every cached entity.
type Identifiable interface {
	EntityID() int64
}

// Publisher receives the events emitted by successful mutations.
// *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Confirmer asks the user before a destructive action. Stores never call
// it; callers such as the CLI do, before calling Delete.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// AlwaysConfirm approves everything. Used for non-interactive runs.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string, string) (bool, error) { return true, nil }

// collection is the state shared by every list store: the items, an
// in-flight counter and the last error message.
type collection[T Identifiable] struct {
	mu       sync.RWMutex
	items    []T
	inFlight int
	err      string
}

func (c *collection[T]) begin() {
	c.mu.Lock()
	c.inFlight++
	c.err = ""
	c.mu.Unlock()
}

func (c *collection[T]) end() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

func (c *collection[T]) fail(msg string) {
	c.mu.Lock()
	c.err = msg
	c.mu.Unlock()
}

func (c *collection[T]) replace(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// replaceThen swaps in items and runs apply inside the same critical
// section, for state that must always describe the current items.
func (c *collection[T]) replaceThen(items []T, apply func()) {
	cp := make([]T, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.items = cp
	apply()
	c.mu.Unlock()
}

func (c *collection[T]) add(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

// swap replaces the element whose id matches item and reports whether one did.
func (c *collection[T]) swap(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() == item.EntityID() {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *collection[T]) remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, it := range c.items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Items returns a copy of the cached list.
func (c *collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find looks an item up by id in the cache.
func (c *collection[T]) Find(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Loading reports whether any request of this store is in flight.
func (c *collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// Err returns the message of the last failed request, or "".
func (c *collection[T]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
