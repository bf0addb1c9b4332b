package port

import (
	"context"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Session, error)
	Profile(ctx context.Context) (*domain.User, error)
}

type CatalogAPI interface {
	Products(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type CartAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, item domain.AddToCart) (*domain.Cart, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) error
}

type OrdersAPI interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	MyOrder(ctx context.Context, id string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) error
}

type PaymentAPI interface {
	CreatePaymentOrder(ctx context.Context, amount int64, addr domain.ShippingAddress) (*domain.GatewayOrder, error)
	VerifyPayment(ctx context.Context, v domain.PaymentVerification) (*domain.Order, error)
	PaymentKey(ctx context.Context) (string, error)
	DemoPayment(ctx context.Context, addr domain.ShippingAddress) (*domain.Order, error)
}

// AdminAPI is the back-office surface. Status and role updates are only
// ever issued by a transition gate commit.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	ListOrders(ctx context.Context, q domain.ListQuery) (*domain.OrderPage, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	ListUsers(ctx context.Context, q domain.ListQuery) (*domain.UserPage, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	SetCategoryActive(ctx context.Context, c domain.Category, active bool) error
	ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ProductPage, error)
	DeleteProduct(ctx context.Context, id string) error
}
