package domain

type PaymentMethod string

const (
	PaymentGateway PaymentMethod = "razorpay"
	PaymentDemo    PaymentMethod = "demo"
)

// GatewayOrder is what the backend returns when a hosted payment is
// started; the fields are handed to the external payment widget.
type GatewayOrder struct {
	Key            string `json:"key"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	GatewayOrderID string `json:"razorpayOrderId"`
	OrderID        string `json:"orderId"`
}

// PaymentVerification is the widget's callback payload forwarded for
// signature verification.
type PaymentVerification struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
	OrderID          string `json:"orderId"`
}

type AddToCart struct {
	ProductID     string         `json:"productId"`
	Quantity      int            `json:"quantity"`
	SelectedSize  string         `json:"selectedSize,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}
