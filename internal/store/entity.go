package store

import (
	"context"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

// crud is the set of backend calls behind an Entity store.
type crud[T any, In any] struct {
	list   func(ctx context.Context) ([]T, error)
	create func(ctx context.Context, in In) (T, error)
	update func(ctx context.Context, id int64, in In) (T, error)
	remove func(ctx context.Context, id int64) error
}

// Entity is the generic list store: reads replace the cache wholesale,
// writes patch it with the server's answer.
//
// Read failures are recorded in Err and logged, never returned from Fetch.
// Write failures are recorded and returned.
type Entity[T Identifiable, In any] struct {
	collection[T]
	plural   string
	singular string
	ops      crud[T, In]
	logger   *log.Logger
}

func newEntity[T Identifiable, In any](plural, singular string, ops crud[T, In], logger *log.Logger) *Entity[T, In] {
	if logger == nil {
		logger = log.Discard()
	}
	return &Entity[T, In]{
		plural:   plural,
		singular: singular,
		ops:      ops,
		logger:   logger.WithComponent(log.ComponentStore).With(log.FieldStore, plural),
	}
}

// Fetch replaces the cached list with the server's.
func (s *Entity[T, In]) Fetch(ctx context.Context) {
	_ = s.fetch(ctx)
}

// Refresh is Fetch for the refresh coordinator: it also reports the failure.
func (s *Entity[T, In]) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *Entity[T, In]) fetch(ctx context.Context) error {
	s.begin()
	defer s.end()

	items, err := s.ops.list(ctx)
	if err != nil {
		s.fail(api.Message(err, "Failed to fetch "+s.plural))
		s.logger.ErrorContext(ctx, "Fetch failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return fmt.Errorf("fetch %s: %w", s.plural, err)
	}
	s.replace(items)
	return nil
}

// Create posts in and appends the created entity to the cache.
func (s *Entity[T, In]) Create(ctx context.Context, in In) (T, error) {
	s.begin()
	defer s.end()

	item, err := s.ops.create(ctx, in)
	if err != nil {
		s.fail(api.Message(err, "Failed to create "+s.singular))
		var zero T
		return zero, fmt.Errorf("create %s: %w", s.singular, err)
	}
	s.add(item)
	return item, nil
}

// Update puts in and swaps the cached element with the same id. An id
// missing from the cache leaves the list untouched.
func (s *Entity[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	s.begin()
	defer s.end()

	item, err := s.ops.update(ctx, id, in)
	if err != nil {
		s.fail(api.Message(err, "Failed to update "+s.singular))
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", s.singular, id, err)
	}
	if !s.swap(item) {
		s.logger.WarnContext(ctx, "Updated entity not in cache",
			log.FieldOperation, log.OpUpdate,
			log.FieldEntityID, id)
	}
	return item, nil
}

// Delete removes id on the server and then from the cache.
func (s *Entity[T, In]) Delete(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	if err := s.ops.remove(ctx, id); err != nil {
		s.fail(api.Message(err, "Failed to delete "+s.singular))
		return fmt.Errorf("delete %s %d: %w", s.singular, id, err)
	}
	s.remove(id)
	return nil
}
