package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func (c *Client) ListDebts(ctx context.Context, typ core.DebtType) ([]core.Debt, error) {
	var out dataEnvelope[[]core.Debt]
	q := url.Values{}
	if typ != "" {
		q.Set("type", string(typ))
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/debts", query: q}, &out)
	return out.Data, err
}

func (c *Client) CreateDebt(ctx context.Context, in core.DebtInput) (core.Debt, error) {
	var out core.Debt
	err := c.send(ctx, request{method: http.MethodPost, path: "/debts", body: in}, &out)
	return out, err
}

func (c *Client) UpdateDebt(ctx context.Context, id int64, in core.DebtUpdateInput) (core.Debt, error) {
	var out core.Debt
	err := c.send(ctx, request{method: http.MethodPut, path: idPath("/debts", id), body: in}, &out)
	return out, err
}

func (c *Client) DeleteDebt(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/debts", id)}, nil)
}

func (c *Client) PayDebt(ctx context.Context, id int64, in core.PayDebtInput) (core.Debt, error) {
	var out core.Debt
	err := c.send(ctx, request{method: http.MethodPost, path: fmt.Sprintf("/debts/%d/pay", id), body: in}, &out)
	return out, err
}

func (c *Client) DeleteDebtPayment(ctx context.Context, paymentID int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/debts/payments", paymentID)}, nil)
}
