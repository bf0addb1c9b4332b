package domain

type CartItem struct {
	ID            string         `json:"_id"`
	Product       string         `json:"product"`
	Name          string         `json:"name"`
	Image         string         `json:"image,omitempty"`
	Price         int64          `json:"price"`
	Quantity      int            `json:"quantity"`
	SelectedSize  string         `json:"selectedSize,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	TotalPrice int64      `json:"totalPrice"`
	TotalItems int        `json:"totalItems"`
}

// ItemCount prefers the server's count and falls back to summing quantities.
func (c Cart) ItemCount() int {
	if c.TotalItems > 0 {
		return c.TotalItems
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,digits=10"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,digits=6"`
	Country string `json:"country,omitempty"`
}
