package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := c.do(ctx, call{method: http.MethodGet, path: "/admin/dashboard", route: "/admin/dashboard"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context, q domain.ListQuery) (*domain.OrderPage, error) {
	var out domain.OrderPage
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/admin/orders",
		route:  "/admin/orders",
		query:  pageQuery(q.Page, q.Search, q.Status),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = max(q.Page, 1)
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/admin/orders/" + url.PathEscape(id),
		route:  "/admin/orders/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/admin/orders/" + url.PathEscape(id) + "/status",
		route:  "/admin/orders/:id/status",
		body:   map[string]domain.OrderStatus{"status": status},
	}, nil)
}

func (c *Client) ListUsers(ctx context.Context, q domain.ListQuery) (*domain.UserPage, error) {
	var out domain.UserPage
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/admin/users",
		route:  "/admin/users",
		query:  pageQuery(q.Page, q.Search, ""),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = max(q.Page, 1)
	}
	return &out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/admin/users/" + url.PathEscape(id) + "/role",
		route:  "/admin/users/:id/role",
		body:   map[string]domain.Role{"role": role},
	}, nil)
}

// ListCategories includes inactive categories and their product counts.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: "/categories/all", route: "/categories/all"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/categories/" + url.PathEscape(id),
		route:  "/categories/:id",
	}, nil)
}

// SetCategoryActive goes through the multipart category update, which is
// the only write the backend exposes for categories.
func (c *Client) SetCategoryActive(ctx context.Context, cat domain.Category, active bool) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", cat.Name); err != nil {
		return fmt.Errorf("encode category form: %w", err)
	}
	if err := w.WriteField("isActive", strconv.FormatBool(active)); err != nil {
		return fmt.Errorf("encode category form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode category form: %w", err)
	}
	return c.do(ctx, call{
		method:      http.MethodPut,
		path:        "/categories/" + url.PathEscape(cat.ID),
		route:       "/categories/:id",
		rawBody:     &buf,
		contentType: w.FormDataContentType(),
	}, nil)
}

func (c *Client) ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ProductPage, error) {
	var out domain.ProductPage
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/admin/products",
		route:  "/admin/products",
		query:  pageQuery(q.Page, q.Search, ""),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = max(q.Page, 1)
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/admin/products/" + url.PathEscape(id),
		route:  "/admin/products/:id",
	}, nil)
}
