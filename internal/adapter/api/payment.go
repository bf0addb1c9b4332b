package api

import (
	"context"
	"net/http"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

type placedOrder struct {
	Order domain.Order `json:"order"`
}

func (c *Client) CreatePaymentOrder(ctx context.Context, amount int64, addr domain.ShippingAddress) (*domain.GatewayOrder, error) {
	var out domain.GatewayOrder
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payment/create-order",
		route:  "/payment/create-order",
		body: struct {
			Amount          int64                  `json:"amount"`
			ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
		}{amount, addr},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyPayment(ctx context.Context, v domain.PaymentVerification) (*domain.Order, error) {
	var out placedOrder
	if err := c.do(ctx, call{method: http.MethodPost, path: "/payment/verify", route: "/payment/verify", body: v}, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) PaymentKey(ctx context.Context) (string, error) {
	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payment/key", route: "/payment/key"}, &out); err != nil {
		return "", err
	}
	return out.Key, nil
}

// DemoPayment places the order without a gateway round trip.
func (c *Client) DemoPayment(ctx context.Context, addr domain.ShippingAddress) (*domain.Order, error) {
	var out placedOrder
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payment/demo",
		route:  "/payment/demo",
		body:   map[string]domain.ShippingAddress{"shippingAddress": addr},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Order, nil
}
