package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// ProductsView is the admin product list, one page at a time.
type ProductsView struct {
	admin  port.AdminAPI
	notify port.Notifier

	mu    sync.RWMutex
	query domain.ListQuery
	page  domain.ProductPage
}

func NewProductsView(admin port.AdminAPI, notify port.Notifier) *ProductsView {
	return &ProductsView{admin: admin, notify: notify, query: domain.ListQuery{Page: 1}}
}

// Load fetches one page of products matching the search text.
func (v *ProductsView) Load(ctx context.Context, q domain.ListQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Status = ""

	page, err := v.admin.ListProducts(ctx, q)
	if err != nil {
		notifyErr(ctx, v.notify, "Failed to fetch products")
		return fmt.Errorf("list products: %w", err)
	}

	v.mu.Lock()
	v.query = q
	v.page = *page
	v.mu.Unlock()
	return nil
}

func (v *ProductsView) Page() domain.ProductPage {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p := v.page
	p.Products = append([]domain.Product(nil), v.page.Products...)
	return p
}

func (v *ProductsView) Query() domain.ListQuery {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// Find returns a product from the loaded page.
func (v *ProductsView) Find(id string) (domain.Product, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, p := range v.page.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Delete removes a product on the loaded page and reloads the same query.
// Deleting the last product of a page steps back one page.
func (v *ProductsView) Delete(ctx context.Context, id string) error {
	if _, ok := v.Find(id); !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotLoaded)
	}
	if err := v.admin.DeleteProduct(ctx, id); err != nil {
		notifyErr(ctx, v.notify, messageOr(err, "Failed to delete product"))
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	notifyOK(ctx, v.notify, "Product deleted successfully")

	q := v.Query()
	if len(v.Page().Products) == 1 && q.Page > 1 {
		q.Page--
	}
	return v.Load(ctx, q)
}
