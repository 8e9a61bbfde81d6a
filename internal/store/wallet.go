package store

import (
	"context"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type WalletAPI interface {
	ListWallets(ctx context.Context) ([]core.Wallet, error)
	CreateWallet(ctx context.Context, in core.WalletInput) (core.Wallet, error)
	UpdateWallet(ctx context.Context, id int64, in core.WalletInput) (core.Wallet, error)
	DeleteWallet(ctx context.Context, id int64) error
}

type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// WalletStore caches the user's wallets. Balances are whatever the server
// last said; they are never adjusted locally.
type WalletStore struct {
	*Entity[core.Wallet, core.WalletInput]
}

func NewWalletStore(client WalletAPI, logger *log.Logger) *WalletStore {
	return &WalletStore{newEntity("wallets", "wallet", crud[core.Wallet, core.WalletInput]{
		list:   client.ListWallets,
		create: client.CreateWallet,
		update: client.UpdateWallet,
		remove: client.DeleteWallet,
	}, logger)}
}

type CategoryStore struct {
	*Entity[core.Category, core.CategoryInput]
}

func NewCategoryStore(client CategoryAPI, logger *log.Logger) *CategoryStore {
	return &CategoryStore{newEntity("categories", "category", crud[core.Category, core.CategoryInput]{
		list:   client.ListCategories,
		create: client.CreateCategory,
		update: client.UpdateCategory,
		remove: client.DeleteCategory,
	}, logger)}
}

// OfType returns the cached categories of one transaction type.
func (s *CategoryStore) OfType(t core.TransactionType) []core.Category {
	var out []core.Category
	for _, c := range s.Items() {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
