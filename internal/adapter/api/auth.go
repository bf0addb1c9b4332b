package api

import (
	"context"
	"net/http"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// authResponse is the user document with the issued token alongside.
type authResponse struct {
	domain.User
	Token string `json:"token"`
}

func (r authResponse) session() *domain.Session {
	return &domain.Session{Token: r.Token, User: r.User}
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var out authResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		route:  "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.session(), nil
}

func (c *Client) Register(ctx context.Context, in port.RegisterInput) (*domain.Session, error) {
	var out authResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		route:  "/auth/register",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.session(), nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/profile", route: "/auth/profile"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
