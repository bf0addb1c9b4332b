package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, call{method: http.MethodGet, path: "/cart", route: "/cart"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddItem(ctx context.Context, item domain.AddToCart) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, call{method: http.MethodPost, path: "/cart/add", route: "/cart/add", body: item}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error) {
	var out domain.Cart
	err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/cart/update/" + url.PathEscape(itemID),
		route:  "/cart/update/:id",
		body:   map[string]int{"quantity": quantity},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	var out domain.Cart
	err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/cart/remove/" + url.PathEscape(itemID),
		route:  "/cart/remove/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/cart/clear", route: "/cart/clear"}, nil)
}
