package domain

type ListQuery struct {
	Page   int
	Search string
	Status string
}

type OrderPage struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
	Total  int     `json:"total"`
}

type UserPage struct {
	Users []User `json:"users"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int    `json:"total"`
}

type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}

// ProductQuery filters the storefront catalog. Prices are whole rupees and
// zero means unbounded.
type ProductQuery struct {
	Category string
	Search   string
	MinPrice int64
	MaxPrice int64
	Sort     string
	Page     int
}

// DefaultProductSort lists the newest products first.
const DefaultProductSort = "-createdAt"
