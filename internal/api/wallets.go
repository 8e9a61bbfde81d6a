package api

import (
	"context"
	"net/http"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func (c *Client) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	var out []core.Wallet
	err := c.do(ctx, request{method: http.MethodGet, path: "/wallets"}, &out)
	return out, err
}

func (c *Client) CreateWallet(ctx context.Context, in core.WalletInput) (core.Wallet, error) {
	var out core.Wallet
	err := c.send(ctx, request{method: http.MethodPost, path: "/wallets", body: in}, &out)
	return out, err
}

func (c *Client) UpdateWallet(ctx context.Context, id int64, in core.WalletInput) (core.Wallet, error) {
	var out core.Wallet
	err := c.send(ctx, request{method: http.MethodPut, path: idPath("/wallets", id), body: in}, &out)
	return out, err
}

func (c *Client) DeleteWallet(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/wallets", id)}, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := c.do(ctx, request{method: http.MethodGet, path: "/categories"}, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	var out core.Category
	err := c.send(ctx, request{method: http.MethodPost, path: "/categories", body: in}, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error) {
	var out core.Category
	err := c.send(ctx, request{method: http.MethodPut, path: idPath("/categories", id), body: in}, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/categories", id)}, nil)
}
