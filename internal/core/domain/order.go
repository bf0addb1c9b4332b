package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown order status")

// OrderStatuses returns every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

type Customer struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Customization struct {
	Text            string `json:"text,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

type OrderItem struct {
	Product       string         `json:"product"`
	Name          string         `json:"name"`
	Image         string         `json:"image,omitempty"`
	Price         int64          `json:"price"`
	Quantity      int            `json:"quantity"`
	SelectedSize  string         `json:"selectedSize,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}

type PaymentInfo struct {
	Method           string `json:"method,omitempty"`
	Status           string `json:"status,omitempty"`
	GatewayOrderID   string `json:"razorpayOrderId,omitempty"`
	GatewayPaymentID string `json:"razorpayPaymentId,omitempty"`
}

type StatusHistoryEntry struct {
	Status OrderStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
	Date   time.Time   `json:"date"`
}

type Order struct {
	ID              string               `json:"_id"`
	OrderNumber     string               `json:"orderNumber"`
	User            *Customer            `json:"user,omitempty"`
	Items           []OrderItem          `json:"items"`
	ShippingAddress ShippingAddress      `json:"shippingAddress"`
	PaymentInfo     PaymentInfo          `json:"paymentInfo"`
	ItemsPrice      int64                `json:"itemsPrice"`
	ShippingPrice   int64                `json:"shippingPrice"`
	TaxPrice        int64                `json:"taxPrice"`
	TotalPrice      int64                `json:"totalPrice"`
	Status          OrderStatus          `json:"orderStatus"`
	StatusHistory   []StatusHistoryEntry `json:"statusHistory,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// CustomerCancellable reports whether the customer may still cancel the
// order themselves.
func (o Order) CustomerCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// Label is the human identifier shown in confirmations.
func (o Order) Label() string {
	if o.OrderNumber != "" {
		return "#" + o.OrderNumber
	}
	return o.ID
}
