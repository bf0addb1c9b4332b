package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

type CheckoutStep int

const (
	StepAddress CheckoutStep = iota + 1
	StepPayment
	StepComplete
)

func (s CheckoutStep) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepPayment:
		return "payment"
	case StepComplete:
		return "complete"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrWrongStep         = errors.New("action not valid at this checkout step")
	ErrCheckoutComplete  = errors.New("checkout already complete")
	ErrPaymentInProgress = errors.New("payment already in progress")
	ErrNoPendingPayment  = errors.New("no gateway payment has been started")
)

// Checkout walks address, then payment, then complete. Once the order is
// placed the wizard is frozen.
type Checkout struct {
	cart     *CartService
	payments port.PaymentAPI
	notify   port.Notifier
	rule     pricing.Rule
	logger   *zap.Logger

	mu      sync.Mutex
	step    CheckoutStep
	addr    domain.ShippingAddress
	paying  bool
	pending *domain.GatewayOrder
	order   *domain.Order
}

// StartCheckout refuses an empty cart and pre-fills the address from the
// signed-in user.
func StartCheckout(ctx context.Context, cart *CartService, payments port.PaymentAPI, notify port.Notifier, rule pricing.Rule, user *domain.User, logger *zap.Logger) (*Checkout, error) {
	c, err := cart.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	addr := domain.ShippingAddress{Country: "India"}
	if user != nil {
		addr.Name, addr.Email, addr.Phone = user.Name, user.Email, user.Phone
	}
	return &Checkout{
		cart:     cart,
		payments: payments,
		notify:   notify,
		rule:     rule,
		logger:   logger,
		step:     StepAddress,
		addr:     addr,
	}, nil
}

func (c *Checkout) Step() CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) Address() domain.ShippingAddress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

func (c *Checkout) Order() (domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return domain.Order{}, false
	}
	return *c.order, true
}

// Quote prices the cart the way the checkout page does.
func (c *Checkout) Quote() pricing.Breakdown {
	return pricing.QuoteCart(c.cart.Cart(), c.rule)
}

// SubmitAddress validates addr locally and moves on to payment.
func (c *Checkout) SubmitAddress(ctx context.Context, addr domain.ShippingAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepAddress {
		return c.stepErr()
	}
	addr = NormalizeAddress(addr)
	if err := ValidateAddress(addr); err != nil {
		c.logger.Debug("address rejected",
			zap.String("action", logging.ActionValidationFailed),
			zap.Error(err),
		)
		notifyErr(ctx, c.notify, messageOr(err, "Please check the address"))
		return err
	}
	c.addr = addr
	c.step = StepPayment
	return nil
}

// Back returns from payment to the address form.
func (c *Checkout) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepPayment || c.paying {
		return c.stepErr()
	}
	c.pending = nil
	c.step = StepAddress
	return nil
}

// Abandon discards everything entered so far.
func (c *Checkout) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step == StepComplete {
		return ErrCheckoutComplete
	}
	if c.paying {
		return ErrPaymentInProgress
	}
	c.step = StepAddress
	c.addr = domain.ShippingAddress{Country: "India"}
	c.pending = nil
	return nil
}

// PayDemo places the order without the hosted payment widget.
func (c *Checkout) PayDemo(ctx context.Context) (*domain.Order, error) {
	addr, err := c.beginPayment()
	if err != nil {
		return nil, err
	}

	order, err := c.payments.DemoPayment(ctx, addr)
	if err != nil {
		c.endPayment(nil)
		notifyErr(ctx, c.notify, messageOr(err, "Failed to place order"))
		return nil, fmt.Errorf("demo payment: %w", err)
	}
	c.complete(ctx, order, domain.PaymentDemo)
	notifyOK(ctx, c.notify, "Order placed successfully!")
	return order, nil
}

// BeginGatewayPayment creates the gateway order the external widget is
// opened with. The amount is the checkout total.
func (c *Checkout) BeginGatewayPayment(ctx context.Context) (*domain.GatewayOrder, error) {
	addr, err := c.beginPayment()
	if err != nil {
		return nil, err
	}

	gw, err := c.payments.CreatePaymentOrder(ctx, c.Quote().Total, addr)
	if err != nil {
		c.endPayment(nil)
		notifyErr(ctx, c.notify, messageOr(err, "Payment failed"))
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	if gw.Key == "" {
		// The order response may omit the publishable key.
		if gw.Key, err = c.payments.PaymentKey(ctx); err != nil {
			c.endPayment(nil)
			notifyErr(ctx, c.notify, "Payment failed")
			return nil, fmt.Errorf("payment key: %w", err)
		}
	}
	c.endPayment(gw)
	cp := *gw
	return &cp, nil
}

// VerifyGatewayPayment forwards the widget's callback for verification.
func (c *Checkout) VerifyGatewayPayment(ctx context.Context, v domain.PaymentVerification) (*domain.Order, error) {
	c.mu.Lock()
	if c.step != StepPayment {
		err := c.stepErr()
		c.mu.Unlock()
		return nil, err
	}
	if c.pending == nil {
		c.mu.Unlock()
		return nil, ErrNoPendingPayment
	}
	if c.paying {
		c.mu.Unlock()
		return nil, ErrPaymentInProgress
	}
	if v.OrderID == "" {
		v.OrderID = c.pending.OrderID
	}
	if v.GatewayOrderID == "" {
		v.GatewayOrderID = c.pending.GatewayOrderID
	}
	c.paying = true
	c.mu.Unlock()

	order, err := c.payments.VerifyPayment(ctx, v)
	if err != nil {
		c.mu.Lock()
		c.paying = false
		c.mu.Unlock()
		notifyErr(ctx, c.notify, "Payment verification failed")
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	c.complete(ctx, order, domain.PaymentGateway)
	notifyOK(ctx, c.notify, "Payment successful!")
	return order, nil
}

// DismissGatewayPayment is called when the widget is closed unpaid.
func (c *Checkout) DismissGatewayPayment(ctx context.Context) {
	c.mu.Lock()
	if c.step == StepPayment && !c.paying {
		c.pending = nil
	}
	c.mu.Unlock()
	notifyErr(ctx, c.notify, "Payment cancelled")
}

func (c *Checkout) beginPayment() (domain.ShippingAddress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepPayment {
		return domain.ShippingAddress{}, c.stepErr()
	}
	if c.paying {
		return domain.ShippingAddress{}, ErrPaymentInProgress
	}
	c.paying = true
	return c.addr, nil
}

func (c *Checkout) endPayment(pending *domain.GatewayOrder) {
	c.mu.Lock()
	c.paying = false
	c.pending = pending
	c.mu.Unlock()
}

func (c *Checkout) complete(ctx context.Context, order *domain.Order, method domain.PaymentMethod) {
	c.mu.Lock()
	c.paying = false
	c.pending = nil
	c.order = order
	c.step = StepComplete
	c.mu.Unlock()

	c.logger.Info("order placed",
		zap.String("action", logging.ActionCheckoutPaid),
		zap.String("order_id", order.ID),
		zap.String("method", string(method)),
	)

	if _, err := c.cart.Fetch(ctx); err != nil {
		c.logger.Warn("refresh cart after checkout failed", zap.Error(err))
	}
}

func (c *Checkout) stepErr() error {
	if c.step == StepComplete {
		return ErrCheckoutComplete
	}
	return fmt.Errorf("%w: at %s", ErrWrongStep, c.step)
}
