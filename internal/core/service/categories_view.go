package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

var ErrCategoryInUse = errors.New("category still has products")

// CategoriesView lists every category, active or not, for the admin.
type CategoriesView struct {
	admin  port.AdminAPI
	notify port.Notifier

	mu         sync.RWMutex
	categories []domain.Category
}

func NewCategoriesView(admin port.AdminAPI, notify port.Notifier) *CategoriesView {
	return &CategoriesView{admin: admin, notify: notify}
}

func (v *CategoriesView) Load(ctx context.Context) error {
	cats, err := v.admin.ListCategories(ctx)
	if err != nil {
		notifyErr(ctx, v.notify, "Failed to load categories")
		return fmt.Errorf("list categories: %w", err)
	}
	v.mu.Lock()
	v.categories = cats
	v.mu.Unlock()
	return nil
}

// Filter returns loaded categories whose name contains search, ignoring case.
func (v *CategoriesView) Filter(search string) []domain.Category {
	v.mu.RLock()
	defer v.mu.RUnlock()

	needle := strings.ToLower(search)
	out := make([]domain.Category, 0, len(v.categories))
	for _, c := range v.categories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

func (v *CategoriesView) find(id string) (domain.Category, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, c := range v.categories {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

// CheckDeletable rejects categories that still hold products before any
// call is made.
func (v *CategoriesView) CheckDeletable(ctx context.Context, id string) (domain.Category, error) {
	c, ok := v.find(id)
	if !ok {
		return domain.Category{}, fmt.Errorf("category %s: %w", id, ErrNotLoaded)
	}
	if c.ProductCount > 0 {
		notifyErr(ctx, v.notify, fmt.Sprintf("Cannot delete category with %d product(s). Please reassign them first.", c.ProductCount))
		return c, fmt.Errorf("category %s has %d products: %w", c.Name, c.ProductCount, ErrCategoryInUse)
	}
	return c, nil
}

func (v *CategoriesView) Delete(ctx context.Context, id string) error {
	if _, err := v.CheckDeletable(ctx, id); err != nil {
		return err
	}
	if err := v.admin.DeleteCategory(ctx, id); err != nil {
		notifyErr(ctx, v.notify, messageOr(err, "Failed to delete category"))
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	notifyOK(ctx, v.notify, "Category deleted successfully")
	return v.Load(ctx)
}

// ToggleActive flips the category's visibility on the storefront.
func (v *CategoriesView) ToggleActive(ctx context.Context, id string) error {
	c, ok := v.find(id)
	if !ok {
		return fmt.Errorf("category %s: %w", id, ErrNotLoaded)
	}
	active := !c.IsActive
	if err := v.admin.SetCategoryActive(ctx, c, active); err != nil {
		notifyErr(ctx, v.notify, "Failed to update category status")
		return fmt.Errorf("toggle category %s: %w", id, err)
	}
	if active {
		notifyOK(ctx, v.notify, "Category activated")
	} else {
		notifyOK(ctx, v.notify, "Category deactivated")
	}
	return v.Load(ctx)
}
