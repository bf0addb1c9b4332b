package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
)

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Street:  "12 MG Road",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
	}
}

type checkoutFixture struct {
	checkout *Checkout
	cartAPI  *mockCartAPI
	payments *mockPayments
	notify   *mockNotifier
}

func startCheckout(t *testing.T) checkoutFixture {
	t.Helper()
	cartAPI := &mockCartAPI{cart: domain.Cart{Items: []domain.CartItem{
		{ID: "a", Price: 500, Quantity: 2},
		{ID: "b", Price: 800, Quantity: 1},
	}}}
	payments := &mockPayments{cart: cartAPI}
	notify := &mockNotifier{}
	cart := NewCartService(cartAPI, loggedIn(domain.RoleUser), notify, pricing.CartRule)
	user := &domain.User{Name: "Asha Rao", Email: "asha@example.com"}

	c, err := StartCheckout(context.Background(), cart, payments, notify, pricing.CheckoutRule, user, nil)
	require.NoError(t, err)
	return checkoutFixture{checkout: c, cartAPI: cartAPI, payments: payments, notify: notify}
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	cart := NewCartService(&mockCartAPI{}, loggedIn(domain.RoleUser), nil, pricing.CartRule)
	_, err := StartCheckout(context.Background(), cart, &mockPayments{}, nil, pricing.CheckoutRule, nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestCheckout_PrefillsFromUser(t *testing.T) {
	f := startCheckout(t)
	addr := f.checkout.Address()
	assert.Equal(t, "Asha Rao", addr.Name)
	assert.Equal(t, "India", addr.Country)
	assert.Equal(t, StepAddress, f.checkout.Step())
}

func TestCheckout_QuoteUsesCheckoutRule(t *testing.T) {
	f := startCheckout(t)
	q := f.checkout.Quote()
	assert.Equal(t, int64(1800), q.Subtotal)
	assert.Equal(t, int64(0), q.Shipping)
	assert.Equal(t, int64(324), q.Tax)
	assert.Equal(t, int64(2124), q.Total)
}

func TestCheckout_AddressValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ShippingAddress)
		field   string
		message string
	}{
		{"missing name", func(a *domain.ShippingAddress) { a.Name = "" }, "name", "Please enter name"},
		{"blank city", func(a *domain.ShippingAddress) { a.City = "   " }, "city", "Please enter city"},
		{"bad email", func(a *domain.ShippingAddress) { a.Email = "asha@" }, "email", "Please enter a valid email address"},
		{"short phone", func(a *domain.ShippingAddress) { a.Phone = "98765" }, "phone", "Please enter a valid 10-digit phone number"},
		{"letters in phone", func(a *domain.ShippingAddress) { a.Phone = "98765abcde" }, "phone", "Please enter a valid 10-digit phone number"},
		{"bad pincode", func(a *domain.ShippingAddress) { a.Pincode = "4110" }, "pincode", "Please enter a valid 6-digit pincode"},
		{"missing beats malformed", func(a *domain.ShippingAddress) {
			a.Email = "nope"
			a.State = ""
		}, "state", "Please enter state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := startCheckout(t)
			addr := validAddress()
			tt.mutate(&addr)

			err := f.checkout.SubmitAddress(context.Background(), addr)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
			assert.Equal(t, tt.message, f.notify.lastError())
			assert.Equal(t, StepAddress, f.checkout.Step())
			assert.Zero(t, f.payments.demoCalls)
		})
	}
}

func TestCheckout_DemoPayment(t *testing.T) {
	f := startCheckout(t)
	ctx := context.Background()

	_, err := f.checkout.PayDemo(ctx)
	assert.True(t, errors.Is(err, ErrWrongStep))

	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))
	assert.Equal(t, StepPayment, f.checkout.Step())

	order, err := f.checkout.PayDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "o-demo", order.ID)
	assert.Equal(t, "India", order.ShippingAddress.Country)
	assert.Equal(t, StepComplete, f.checkout.Step())
	assert.Equal(t, "Order placed successfully!", f.notify.lastSuccess())

	placed, ok := f.checkout.Order()
	require.True(t, ok)
	assert.Equal(t, "o-demo", placed.ID)
	assert.True(t, f.checkout.cart.Cart().Empty())
}

func TestCheckout_CompleteIsFrozen(t *testing.T) {
	f := startCheckout(t)
	ctx := context.Background()
	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))
	_, err := f.checkout.PayDemo(ctx)
	require.NoError(t, err)

	assert.True(t, errors.Is(f.checkout.Back(), ErrCheckoutComplete))
	assert.True(t, errors.Is(f.checkout.Abandon(), ErrCheckoutComplete))
	_, err = f.checkout.PayDemo(ctx)
	assert.True(t, errors.Is(err, ErrCheckoutComplete))
	assert.Equal(t, 1, f.payments.demoCalls)
}

func TestCheckout_BackAndAbandon(t *testing.T) {
	f := startCheckout(t)
	ctx := context.Background()

	assert.True(t, errors.Is(f.checkout.Back(), ErrWrongStep))

	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))
	require.NoError(t, f.checkout.Back())
	assert.Equal(t, StepAddress, f.checkout.Step())
	assert.Equal(t, "Pune", f.checkout.Address().City)

	require.NoError(t, f.checkout.Abandon())
	assert.Empty(t, f.checkout.Address().City)
}

func TestCheckout_DemoFailureStaysOnPayment(t *testing.T) {
	f := startCheckout(t)
	f.payments.failDemo = &serverErr{"Some items are out of stock"}
	ctx := context.Background()
	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))

	_, err := f.checkout.PayDemo(ctx)
	require.Error(t, err)
	assert.Equal(t, "Some items are out of stock", f.notify.lastError())
	assert.Equal(t, StepPayment, f.checkout.Step())
}

func TestCheckout_GatewayPayment(t *testing.T) {
	f := startCheckout(t)
	ctx := context.Background()
	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))

	_, err := f.checkout.VerifyGatewayPayment(ctx, domain.PaymentVerification{})
	assert.True(t, errors.Is(err, ErrNoPendingPayment))

	gw, err := f.checkout.BeginGatewayPayment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2124), f.payments.amount)
	assert.Equal(t, "order_rzp_1", gw.GatewayOrderID)

	order, err := f.checkout.VerifyGatewayPayment(ctx, domain.PaymentVerification{
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, "o-new", order.ID)
	require.Len(t, f.payments.verified, 1)
	assert.Equal(t, "o-new", f.payments.verified[0].OrderID)
	assert.Equal(t, "order_rzp_1", f.payments.verified[0].GatewayOrderID)
	assert.Equal(t, StepComplete, f.checkout.Step())
	assert.Equal(t, "Payment successful!", f.notify.lastSuccess())
}

func TestCheckout_GatewayKeyFallback(t *testing.T) {
	tests := []struct {
		name     string
		omitKey  bool
		failKey  error
		wantKey  string
		wantErr  bool
		keyCalls int
	}{
		{name: "key on order", wantKey: "rzp_test"},
		{name: "key fetched", omitKey: true, wantKey: "rzp_live_key", keyCalls: 1},
		{name: "key unavailable", omitKey: true, failKey: errDown, wantErr: true, keyCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := startCheckout(t)
			f.payments.omitKey = tt.omitKey
			f.payments.failKey = tt.failKey
			ctx := context.Background()
			require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))

			gw, err := f.checkout.BeginGatewayPayment(ctx)
			assert.Equal(t, tt.keyCalls, f.payments.keyCalls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "Payment failed", f.notify.lastError())
				_, err = f.checkout.VerifyGatewayPayment(ctx, domain.PaymentVerification{GatewayPaymentID: "pay_1"})
				assert.True(t, errors.Is(err, ErrNoPendingPayment))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, gw.Key)
		})
	}
}

func TestCheckout_GatewayVerifyFailure(t *testing.T) {
	f := startCheckout(t)
	f.payments.failVerify = errDown
	ctx := context.Background()
	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))
	_, err := f.checkout.BeginGatewayPayment(ctx)
	require.NoError(t, err)

	_, err = f.checkout.VerifyGatewayPayment(ctx, domain.PaymentVerification{GatewayPaymentID: "pay_1"})
	require.Error(t, err)
	assert.Equal(t, "Payment verification failed", f.notify.lastError())
	assert.Equal(t, StepPayment, f.checkout.Step())
}

func TestCheckout_DismissGateway(t *testing.T) {
	f := startCheckout(t)
	ctx := context.Background()
	require.NoError(t, f.checkout.SubmitAddress(ctx, validAddress()))
	_, err := f.checkout.BeginGatewayPayment(ctx)
	require.NoError(t, err)

	f.checkout.DismissGatewayPayment(ctx)
	assert.Equal(t, "Payment cancelled", f.notify.lastError())
	_, err = f.checkout.VerifyGatewayPayment(ctx, domain.PaymentVerification{})
	assert.True(t, errors.Is(err, ErrNoPendingPayment))
}
