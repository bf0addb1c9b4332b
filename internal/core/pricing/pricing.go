// Package pricing computes storefront totals from explicit shipping and tax
// rules. Amounts are whole rupees.
package pricing

import (
	"math"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// ShippingRule charges Flat unless FreeAbove is set and the subtotal is
// strictly greater than it.
type ShippingRule struct {
	Flat      int64 `yaml:"flat"`
	FreeAbove int64 `yaml:"free_above"`
}

func (r ShippingRule) For(subtotal int64) int64 {
	if r.FreeAbove > 0 && subtotal > r.FreeAbove {
		return 0
	}
	return r.Flat
}

type TaxRule struct {
	Rate float64 `yaml:"rate"`
}

// For rounds half away from zero to the nearest rupee.
func (r TaxRule) For(subtotal int64) int64 {
	if r.Rate == 0 {
		return 0
	}
	return int64(math.Round(float64(subtotal) * r.Rate))
}

type Rule struct {
	Shipping ShippingRule `yaml:"shipping"`
	Tax      TaxRule      `yaml:"tax"`
}

// The cart page and the checkout page price the same cart differently.
// Both presets are kept as-is so totals match what each page shows.
var (
	CartRule = Rule{
		Shipping: ShippingRule{Flat: 500},
	}
	CheckoutRule = Rule{
		Shipping: ShippingRule{Flat: 99, FreeAbove: 999},
		Tax:      TaxRule{Rate: 0.18},
	}
)

// FreeShippingThreshold is the amount the cart page advertises for free
// shipping.
const FreeShippingThreshold int64 = 999

type Line struct {
	Price    int64
	Quantity int
}

type Breakdown struct {
	Subtotal int64 `json:"itemsPrice"`
	Shipping int64 `json:"shippingPrice"`
	Tax      int64 `json:"taxPrice"`
	Total    int64 `json:"totalPrice"`
	Items    int   `json:"totalItems"`
}

func Quote(lines []Line, rule Rule) Breakdown {
	var b Breakdown
	for _, l := range lines {
		b.Subtotal += l.Price * int64(l.Quantity)
		b.Items += l.Quantity
	}
	b.Shipping = rule.Shipping.For(b.Subtotal)
	b.Tax = rule.Tax.For(b.Subtotal)
	b.Total = b.Subtotal + b.Shipping + b.Tax
	return b
}

func QuoteCart(cart domain.Cart, rule Rule) Breakdown {
	lines := make([]Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, Line{Price: it.Price, Quantity: it.Quantity})
	}
	return Quote(lines, rule)
}

// FreeShippingGap is how much more must be added before the subtotal
// reaches threshold; zero once it has.
func (b Breakdown) FreeShippingGap(threshold int64) int64 {
	if b.Subtotal >= threshold {
		return 0
	}
	return threshold - b.Subtotal
}
