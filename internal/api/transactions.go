package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

// ListTransactions fetches one page. The caller builds query and decides
// which filter values to omit.
func (c *Client) ListTransactions(ctx context.Context, query url.Values) (TransactionPage, error) {
	var out TransactionPage
	err := c.do(ctx, request{method: http.MethodGet, path: "/transactions", query: query}, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	var out core.Transaction
	err := c.send(ctx, request{method: http.MethodPost, path: "/transactions", body: in}, &out)
	return out, err
}

func (c *Client) Transfer(ctx context.Context, in core.TransferInput) error {
	var out messageResponse
	return c.send(ctx, request{method: http.MethodPost, path: "/transactions/transfer", body: in}, &out)
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/transactions", id)}, nil)
}

func (c *Client) Calendar(ctx context.Context, query url.Values) ([]core.DaySummary, error) {
	var out dataEnvelope[[]core.DaySummary]
	err := c.do(ctx, request{method: http.MethodGet, path: "/transactions/calendar", query: query}, &out)
	return out.Data, err
}

func (c *Client) Report(ctx context.Context, query url.Values) ([]core.CategoryBreakdown, error) {
	var out dataEnvelope[[]core.CategoryBreakdown]
	err := c.do(ctx, request{method: http.MethodGet, path: "/transactions/report", query: query}, &out)
	return out.Data, err
}
