package pricing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func TestQuote_CartAndCheckoutDiffer(t *testing.T) {
	lines := []Line{{Price: 500, Quantity: 2}, {Price: 300, Quantity: 1}}

	cart := Quote(lines, CartRule)
	want := Breakdown{Subtotal: 1300, Shipping: 500, Tax: 0, Total: 1800, Items: 3}
	if diff := cmp.Diff(want, cart); diff != "" {
		t.Errorf("cart quote mismatch (-want +got):\n%s", diff)
	}

	checkout := Quote(lines, CheckoutRule)
	want = Breakdown{Subtotal: 1300, Shipping: 0, Tax: 234, Total: 1534, Items: 3}
	if diff := cmp.Diff(want, checkout); diff != "" {
		t.Errorf("checkout quote mismatch (-want +got):\n%s", diff)
	}
}

func TestShippingRule_Threshold(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"below threshold", 500, 99},
		{"at threshold is still charged", 999, 99},
		{"above threshold", 1000, 0},
		{"empty cart", 0, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckoutRule.Shipping.For(tt.subtotal); got != tt.want {
				t.Errorf("expected shipping %d, got %d", tt.want, got)
			}
		})
	}

	if got := CartRule.Shipping.For(5000); got != 500 {
		t.Errorf("flat rule should never waive shipping, got %d", got)
	}
}

func TestTaxRule_Rounding(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{1300, 234},
		{99, 18},
		{50, 9},
		{1, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := CheckoutRule.Tax.For(tt.subtotal); got != tt.want {
			t.Errorf("tax on %d: expected %d, got %d", tt.subtotal, tt.want, got)
		}
	}
}

func TestQuoteCart(t *testing.T) {
	cart := domain.Cart{Items: []domain.CartItem{
		{ID: "a", Price: 1200, Quantity: 1},
	}}

	got := QuoteCart(cart, CheckoutRule)
	if got.Total != 1200+0+216 {
		t.Errorf("expected total 1416, got %d", got.Total)
	}
	if got.Items != 1 {
		t.Errorf("expected 1 item, got %d", got.Items)
	}
}

func TestFreeShippingGap(t *testing.T) {
	b := Quote([]Line{{Price: 400, Quantity: 1}}, CartRule)
	if gap := b.FreeShippingGap(FreeShippingThreshold); gap != 599 {
		t.Errorf("expected gap 599, got %d", gap)
	}

	b = Quote([]Line{{Price: 999, Quantity: 1}}, CartRule)
	if gap := b.FreeShippingGap(FreeShippingThreshold); gap != 0 {
		t.Errorf("expected no gap at threshold, got %d", gap)
	}
}
