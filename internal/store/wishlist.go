package store

import (
	"context"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type WishlistAPI interface {
	ListWishlist(ctx context.Context) ([]core.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, in core.WishlistInput) error
	UpdateWishlistItem(ctx context.Context, id int64, in core.WishlistInput) error
	DeleteWishlistItem(ctx context.Context, id int64) error
	MarkWishlistBought(ctx context.Context, id int64) error
}

// WishlistStore caches planned purchases. The backend answers writes with
// a message instead of the entity, so writes re-fetch the list.
type WishlistStore struct {
	collection[core.WishlistItem]
	client WishlistAPI
	logger *log.Logger
}

func NewWishlistStore(client WishlistAPI, logger *log.Logger) *WishlistStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &WishlistStore{
		client: client,
		logger: logger.WithComponent(log.ComponentStore).With(log.FieldStore, "wishlist"),
	}
}

func (s *WishlistStore) Fetch(ctx context.Context) {
	_ = s.fetch(ctx)
}

func (s *WishlistStore) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *WishlistStore) fetch(ctx context.Context) error {
	s.begin()
	defer s.end()

	items, err := s.client.ListWishlist(ctx)
	if err != nil {
		s.fail(api.Message(err, "Failed to fetch wishlist"))
		s.logger.ErrorContext(ctx, "Fetch failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return fmt.Errorf("fetch wishlist: %w", err)
	}
	s.replace(items)
	return nil
}

// write runs a mutation and re-fetches on success.
func (s *WishlistStore) write(ctx context.Context, what string, call func() error) error {
	s.begin()
	err := call()
	if err != nil {
		s.fail(api.Message(err, "Failed to "+what))
	}
	s.end()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	s.Fetch(ctx)
	return nil
}

func (s *WishlistStore) Create(ctx context.Context, in core.WishlistInput) error {
	return s.write(ctx, "create wishlist item", func() error {
		return s.client.CreateWishlistItem(ctx, in)
	})
}

func (s *WishlistStore) Update(ctx context.Context, id int64, in core.WishlistInput) error {
	return s.write(ctx, "update wishlist item", func() error {
		return s.client.UpdateWishlistItem(ctx, id, in)
	})
}

func (s *WishlistStore) MarkBought(ctx context.Context, id int64) error {
	return s.write(ctx, "mark wishlist item bought", func() error {
		return s.client.MarkWishlistBought(ctx, id)
	})
}

func (s *WishlistStore) Delete(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	if err := s.client.DeleteWishlistItem(ctx, id); err != nil {
		s.fail(api.Message(err, "Failed to delete wishlist item"))
		return fmt.Errorf("delete wishlist item %d: %w", id, err)
	}
	s.remove(id)
	return nil
}

// Pending returns the items not yet bought.
func (s *WishlistStore) Pending() []core.WishlistItem {
	var out []core.WishlistItem
	for _, it := range s.Items() {
		if !it.IsBought {
			out = append(out, it)
		}
	}
	return out
}
