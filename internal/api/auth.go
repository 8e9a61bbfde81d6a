package api

import (
	"context"
	"net/http"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func (c *Client) Login(ctx context.Context, in core.Credentials) (core.AuthResponse, error) {
	var out core.AuthResponse
	err := c.send(ctx, request{method: http.MethodPost, path: "/auth/login", body: in, public: true}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, in core.RegisterInput) (core.AuthResponse, error) {
	var out core.AuthResponse
	err := c.send(ctx, request{method: http.MethodPost, path: "/auth/register", body: in, public: true}, &out)
	return out, err
}

// Logout tells the backend to forget the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *Client) Profile(ctx context.Context) (core.User, error) {
	var out struct {
		User core.User `json:"user"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/user/profile"}, &out)
	return out.User, err
}
