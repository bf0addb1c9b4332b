package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// productSorts are the orderings the storefront offers.
var productSorts = map[string]bool{
	domain.DefaultProductSort: true,
	"price":                   true,
	"-price":                  true,
	"name":                    true,
	"-rating":                 true,
}

// Catalog is the read-only storefront: products, the featured shelf and
// the active categories.
type Catalog struct {
	api    port.CatalogAPI
	notify port.Notifier
}

func NewCatalog(api port.CatalogAPI, notify port.Notifier) *Catalog {
	return &Catalog{api: api, notify: notify}
}

// Normalize fills defaults and rejects filters the backend would
// misread. A price range given the wrong way round is swapped.
func (c *Catalog) Normalize(q domain.ProductQuery) (domain.ProductQuery, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = domain.DefaultProductSort
	}
	if !productSorts[q.Sort] {
		return q, &ValidationError{Field: "sort", Message: fmt.Sprintf("Unknown sort order %q", q.Sort)}
	}
	if q.MinPrice < 0 || q.MaxPrice < 0 {
		return q, &ValidationError{Field: "price", Message: "Prices cannot be negative"}
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}
	return q, nil
}

func (c *Catalog) Browse(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	q, err := c.Normalize(q)
	if err != nil {
		notifyErr(ctx, c.notify, messageOr(err, "Invalid filter"))
		return nil, err
	}
	page, err := c.api.Products(ctx, q)
	if err != nil {
		notifyErr(ctx, c.notify, "Failed to load products")
		return nil, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

func (c *Catalog) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := c.api.Featured(ctx)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return products, nil
}

func (c *Catalog) Product(ctx context.Context, id string) (*domain.Product, error) {
	p, err := c.api.GetProduct(ctx, id)
	if err != nil {
		notifyErr(ctx, c.notify, messageOr(err, "Product not found"))
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := c.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
