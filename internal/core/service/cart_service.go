package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartService keeps the last cart the server returned. Every mutation
// replaces it with the server's answer.
type CartService struct {
	api      port.CartAPI
	sessions port.SessionStore
	notify   port.Notifier
	rule     pricing.Rule

	mu   sync.RWMutex
	cart domain.Cart
}

func NewCartService(api port.CartAPI, sessions port.SessionStore, notify port.Notifier, rule pricing.Rule) *CartService {
	return &CartService{api: api, sessions: sessions, notify: notify, rule: rule}
}

// Fetch loads the cart; a logged-out caller simply has an empty one.
func (s *CartService) Fetch(ctx context.Context) (domain.Cart, error) {
	if !s.loggedIn(ctx) {
		s.set(domain.Cart{})
		return domain.Cart{}, nil
	}
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	s.set(*cart)
	return *cart, nil
}

func (s *CartService) Add(ctx context.Context, item domain.AddToCart) (domain.Cart, error) {
	if !s.loggedIn(ctx) {
		notifyErr(ctx, s.notify, "Please login to add items to cart")
		return domain.Cart{}, ErrNotLoggedIn
	}
	if item.Quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	cart, err := s.api.AddItem(ctx, item)
	if err != nil {
		notifyErr(ctx, s.notify, messageOr(err, "Failed to add to cart"))
		return domain.Cart{}, fmt.Errorf("add to cart: %w", err)
	}
	s.set(*cart)
	notifyOK(ctx, s.notify, "Added to cart!")
	return *cart, nil
}

func (s *CartService) Update(ctx context.Context, itemID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	cart, err := s.api.UpdateItem(ctx, itemID, quantity)
	if err != nil {
		notifyErr(ctx, s.notify, "Failed to update cart")
		return domain.Cart{}, fmt.Errorf("update cart item %s: %w", itemID, err)
	}
	s.set(*cart)
	return *cart, nil
}

func (s *CartService) Remove(ctx context.Context, itemID string) (domain.Cart, error) {
	cart, err := s.api.RemoveItem(ctx, itemID)
	if err != nil {
		notifyErr(ctx, s.notify, "Failed to remove item")
		return domain.Cart{}, fmt.Errorf("remove cart item %s: %w", itemID, err)
	}
	s.set(*cart)
	notifyOK(ctx, s.notify, "Item removed from cart")
	return *cart, nil
}

func (s *CartService) Clear(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		notifyErr(ctx, s.notify, "Failed to clear cart")
		return fmt.Errorf("clear cart: %w", err)
	}
	s.set(domain.Cart{})
	return nil
}

func (s *CartService) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cart
	c.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return c
}

// Summary prices the held cart the way the cart page does.
func (s *CartService) Summary() pricing.Breakdown {
	return pricing.QuoteCart(s.Cart(), s.rule)
}

func (s *CartService) set(c domain.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *CartService) loggedIn(ctx context.Context) bool {
	if s.sessions == nil {
		return true
	}
	sess, err := s.sessions.Load(ctx)
	return err == nil && sess != nil && sess.Token != ""
}
