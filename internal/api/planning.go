package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func (c *Client) ListWishlist(ctx context.Context) ([]core.WishlistItem, error) {
	var out []core.WishlistItem
	err := c.do(ctx, request{method: http.MethodGet, path: "/wishlist"}, &out)
	return out, err
}

// CreateWishlistItem returns only once the item is stored; the backend
// answers with a message, not the entity.
func (c *Client) CreateWishlistItem(ctx context.Context, in core.WishlistInput) error {
	var out messageResponse
	return c.send(ctx, request{method: http.MethodPost, path: "/wishlist", body: in}, &out)
}

func (c *Client) UpdateWishlistItem(ctx context.Context, id int64, in core.WishlistInput) error {
	var out messageResponse
	return c.send(ctx, request{method: http.MethodPut, path: idPath("/wishlist", id), body: in}, &out)
}

func (c *Client) DeleteWishlistItem(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/wishlist", id)}, nil)
}

func (c *Client) MarkWishlistBought(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodPatch, path: fmt.Sprintf("/wishlist/%d/bought", id)}, nil)
}

func (c *Client) ListSavingGoals(ctx context.Context) ([]core.SavingGoal, error) {
	var out dataEnvelope[[]core.SavingGoal]
	err := c.do(ctx, request{method: http.MethodGet, path: "/saving-goals"}, &out)
	return out.Data, err
}

func (c *Client) CreateSavingGoal(ctx context.Context, in core.SavingGoalInput) (core.SavingGoal, error) {
	var out dataEnvelope[core.SavingGoal]
	err := c.send(ctx, request{method: http.MethodPost, path: "/saving-goals", body: in}, &out)
	return out.Data, err
}

func (c *Client) AddContribution(ctx context.Context, goalID int64, in core.ContributionInput) (core.SavingContribution, error) {
	var out dataEnvelope[core.SavingContribution]
	err := c.send(ctx, request{method: http.MethodPost, path: fmt.Sprintf("/saving-goals/%d/contributions", goalID), body: in}, &out)
	return out.Data, err
}

func (c *Client) Dashboard(ctx context.Context) (core.DashboardData, error) {
	var out dataEnvelope[core.DashboardData]
	err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard"}, &out)
	return out.Data, err
}

func (c *Client) FinancialHealth(ctx context.Context) (core.FinancialHealth, error) {
	var out dataEnvelope[core.FinancialHealth]
	err := c.do(ctx, request{method: http.MethodGet, path: "/financial-health"}, &out)
	return out.Data, err
}
