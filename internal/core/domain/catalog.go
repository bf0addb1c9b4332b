package domain

import "time"

type Product struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category,omitempty"`
	Featured  bool      `json:"featured,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LowStockAt is the stock level the admin list flags in red.
const LowStockAt = 5

func (p Product) LowStock() bool { return p.Stock <= LowStockAt }

type Category struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"productCount"`
	IsActive     bool   `json:"isActive"`
}

type StatusCount struct {
	Status OrderStatus `json:"_id"`
	Count  int         `json:"count"`
}

type Dashboard struct {
	TotalRevenue   int64         `json:"totalRevenue"`
	TotalOrders    int           `json:"totalOrders"`
	TotalProducts  int           `json:"totalProducts"`
	TotalUsers     int           `json:"totalUsers"`
	OrdersByStatus []StatusCount `json:"ordersByStatus"`
	RecentOrders   []Order       `json:"recentOrders"`
}
