package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// Products is one page of the storefront catalog.
func (c *Client) Products(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	v := pageQuery(q.Page, q.Search, "")
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatInt(q.MaxPrice, 10))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}

	var out domain.ProductPage
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products", route: "/products", query: v}, &out); err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = max(q.Page, 1)
	}
	return &out, nil
}

func (c *Client) Featured(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products/featured", route: "/products/featured"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/products/" + url.PathEscape(id),
		route:  "/products/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories is the public list; inactive categories are already hidden.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: "/categories", route: "/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
