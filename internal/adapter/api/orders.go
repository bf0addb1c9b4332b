package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/orders", route: "/orders"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/orders/" + url.PathEscape(id),
		route:  "/orders/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/orders/" + url.PathEscape(id) + "/cancel",
		route:  "/orders/:id/cancel",
	}, nil)
}
