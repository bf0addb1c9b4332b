package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// OrdersView is the admin order list with its detail panel. Status changes
// go through the view's gate; rows are only ever replaced by a re-fetch.
type OrdersView struct {
	admin  port.AdminAPI
	notify port.Notifier
	gate   *gate.Gate

	mu     sync.RWMutex
	query  domain.ListQuery
	page   domain.OrderPage
	detail *domain.Order
}

func NewOrdersView(admin port.AdminAPI, notify port.Notifier, opts ...gate.Option) *OrdersView {
	v := &OrdersView{admin: admin, notify: notify, query: domain.ListQuery{Page: 1}}
	commit := func(ctx context.Context, req domain.TransitionRequest) error {
		return admin.UpdateOrderStatus(ctx, req.EntityID, domain.OrderStatus(req.ProposedValue))
	}
	base := []gate.Option{gate.WithNotifier(notify), gate.WithRefresh(v.refresh)}
	v.gate = gate.New(gate.OrderPolicy{}, commit, append(base, opts...)...)
	return v
}

// Load fetches one page of orders, filtered by search text and status.
func (v *OrdersView) Load(ctx context.Context, q domain.ListQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Status != "" {
		if _, err := domain.ParseOrderStatus(q.Status); err != nil {
			return fmt.Errorf("filter %q: %w", q.Status, err)
		}
	}

	page, err := v.admin.ListOrders(ctx, q)
	if err != nil {
		notifyErr(ctx, v.notify, "Failed to fetch orders")
		return fmt.Errorf("list orders: %w", err)
	}

	v.mu.Lock()
	v.query = q
	v.page = *page
	v.mu.Unlock()
	return nil
}

// Open loads an order into the detail panel.
func (v *OrdersView) Open(ctx context.Context, id string) (*domain.Order, error) {
	o, err := v.admin.GetOrder(ctx, id)
	if err != nil {
		notifyErr(ctx, v.notify, "Failed to load order details")
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	v.mu.Lock()
	v.detail = o
	v.mu.Unlock()

	cp := *o
	return &cp, nil
}

func (v *OrdersView) CloseDetail() {
	v.mu.Lock()
	v.detail = nil
	v.mu.Unlock()
}

func (v *OrdersView) Detail() (domain.Order, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.detail == nil {
		return domain.Order{}, false
	}
	return *v.detail, true
}

func (v *OrdersView) Page() domain.OrderPage {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p := v.page
	p.Orders = append([]domain.Order(nil), v.page.Orders...)
	return p
}

func (v *OrdersView) Rows() []domain.Order {
	return v.Page().Orders
}

func (v *OrdersView) Query() domain.ListQuery {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// Selected is the status a selector for orderID shows: the last value
// fetched from the backend.
func (v *OrdersView) Selected(orderID string) (domain.OrderStatus, bool) {
	o, ok := v.find(orderID)
	if !ok {
		return "", false
	}
	return o.Status, true
}

func (v *OrdersView) find(orderID string) (domain.Order, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.detail != nil && v.detail.ID == orderID {
		return *v.detail, true
	}
	for _, o := range v.page.Orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

// RequestStatus opens the gate for moving orderID to proposed.
func (v *OrdersView) RequestStatus(ctx context.Context, orderID string, proposed domain.OrderStatus) (domain.TransitionRequest, error) {
	if _, err := domain.ParseOrderStatus(string(proposed)); err != nil {
		return domain.TransitionRequest{}, err
	}
	o, ok := v.find(orderID)
	if !ok {
		return domain.TransitionRequest{}, fmt.Errorf("order %s: %w", orderID, ErrNotLoaded)
	}
	return v.gate.Open(ctx, o.ID, o.Label(), string(o.Status), string(proposed))
}

func (v *OrdersView) Continue(ctx context.Context) (domain.GateState, error) {
	return v.gate.Continue(ctx)
}

func (v *OrdersView) Confirm(ctx context.Context) (domain.GateState, error) {
	return v.gate.Confirm(ctx)
}

// Cancel abandons the open request; the returned status is what the
// selector reverts to.
func (v *OrdersView) Cancel(ctx context.Context) (domain.OrderStatus, error) {
	prev, err := v.gate.Cancel(ctx)
	return domain.OrderStatus(prev), err
}

func (v *OrdersView) Gate() *gate.Gate { return v.gate }

// Busy reports whether the view's gate holds an open request.
func (v *OrdersView) Busy() bool { return v.gate.Busy() }

func (v *OrdersView) refresh(ctx context.Context, req domain.TransitionRequest) error {
	var errs []error
	if err := v.Load(ctx, v.Query()); err != nil {
		errs = append(errs, err)
	}

	v.mu.RLock()
	reopen := v.detail != nil && v.detail.ID == req.EntityID
	v.mu.RUnlock()
	if reopen {
		if _, err := v.Open(ctx, req.EntityID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
