package service

import (
	"context"
	"fmt"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// CustomerOrders is the signed-in customer's own order history.
type CustomerOrders struct {
	orders port.OrdersAPI
	notify port.Notifier
}

func NewCustomerOrders(orders port.OrdersAPI, notify port.Notifier) *CustomerOrders {
	return &CustomerOrders{orders: orders, notify: notify}
}

func (s *CustomerOrders) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.MyOrders(ctx)
	if err != nil {
		notifyErr(ctx, s.notify, "Failed to fetch orders")
		return nil, fmt.Errorf("list my orders: %w", err)
	}
	return orders, nil
}

func (s *CustomerOrders) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.MyOrder(ctx, id)
	if err != nil {
		notifyErr(ctx, s.notify, "Order not found")
		return nil, fmt.Errorf("get my order %s: %w", id, err)
	}
	return o, nil
}

// Cancel cancels a pending or confirmed order and returns it re-fetched.
func (s *CustomerOrders) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.MyOrder(ctx, id)
	if err != nil {
		notifyErr(ctx, s.notify, "Order not found")
		return nil, fmt.Errorf("get my order %s: %w", id, err)
	}
	if !o.CustomerCancellable() {
		notifyErr(ctx, s.notify, "Failed to cancel order")
		return o, fmt.Errorf("order %s is %s: %w", o.Label(), o.Status, ErrNotCancelable)
	}

	if err := s.orders.CancelOrder(ctx, id); err != nil {
		notifyErr(ctx, s.notify, messageOr(err, "Failed to cancel order"))
		return nil, fmt.Errorf("cancel order %s: %w", id, err)
	}
	notifyOK(ctx, s.notify, "Order cancelled successfully")

	return s.Get(ctx, id)
}
