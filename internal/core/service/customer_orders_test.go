package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func newMockOrders() *mockOrdersAPI {
	return &mockOrdersAPI{orders: map[string]domain.Order{
		"o1": {ID: "o1", OrderNumber: "AMB-1", Status: domain.OrderStatusConfirmed},
		"o2": {ID: "o2", OrderNumber: "AMB-2", Status: domain.OrderStatusShipped},
	}}
}

func TestCustomerOrders_CancelAllowed(t *testing.T) {
	api := newMockOrders()
	notify := &mockNotifier{}
	s := NewCustomerOrders(api, notify)

	o, err := s.Cancel(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, o.Status)
	assert.Equal(t, []string{"o1"}, api.cancelled)
	assert.Equal(t, "Order cancelled successfully", notify.lastSuccess())
}

func TestCustomerOrders_CancelShippedRejectedLocally(t *testing.T) {
	api := newMockOrders()
	s := NewCustomerOrders(api, &mockNotifier{})

	_, err := s.Cancel(context.Background(), "o2")
	assert.True(t, errors.Is(err, ErrNotCancelable))
	assert.Empty(t, api.cancelled)
}

func TestCustomerOrders_ListFailure(t *testing.T) {
	api := newMockOrders()
	api.failList = errDown
	notify := &mockNotifier{}
	s := NewCustomerOrders(api, notify)

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch orders", notify.lastError())
}

func TestCustomerOrders_GetMissing(t *testing.T) {
	notify := &mockNotifier{}
	s := NewCustomerOrders(newMockOrders(), notify)

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, "Order not found", notify.lastError())
}
