package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// serverErr mimics the API client's error carrying the backend's message.
type serverErr struct{ msg string }

func (e *serverErr) Error() string       { return "api: " + e.msg }
func (e *serverErr) UserMessage() string { return e.msg }

var errDown = errors.New("connection refused")

type mockNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (m *mockNotifier) Success(ctx context.Context, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes = append(m.successes, msg)
}

func (m *mockNotifier) Error(ctx context.Context, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockNotifier) lastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errors) == 0 {
		return ""
	}
	return m.errors[len(m.errors)-1]
}

func (m *mockNotifier) lastSuccess() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.successes) == 0 {
		return ""
	}
	return m.successes[len(m.successes)-1]
}

type mockSessions struct {
	mu   sync.Mutex
	sess *domain.Session
}

func (m *mockSessions) Load(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	s := *m.sess
	return &s, nil
}

func (m *mockSessions) Save(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &s
	return nil
}

func (m *mockSessions) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func loggedIn(role domain.Role) *mockSessions {
	return &mockSessions{sess: &domain.Session{
		Token: "tok",
		User:  domain.User{ID: "u-admin", Name: "Meera", Email: "meera@ambikamber.com", Role: role},
	}}
}

// mockAdmin is an in-memory backend: updates change what later reads see.
type mockAdmin struct {
	mu         sync.Mutex
	orders     map[string]domain.Order
	users      map[string]domain.User
	categories []domain.Category
	products   []domain.Product

	listOrdersCalls int
	getOrderCalls   int
	statusUpdates   []string
	roleUpdates     []string
	deleted         []string
	toggled         map[string]bool
	productQueries  []domain.ListQuery

	failList   error
	failGet    error
	failUpdate error
	failDelete error
}

func newMockAdmin() *mockAdmin {
	return &mockAdmin{
		orders: map[string]domain.Order{
			"o1": {ID: "o1", OrderNumber: "AMB-1001", Status: domain.OrderStatusPending, TotalPrice: 1534},
			"o2": {ID: "o2", OrderNumber: "AMB-1002", Status: domain.OrderStatusShipped, TotalPrice: 2100},
		},
		users: map[string]domain.User{
			"u1": {ID: "u1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleUser},
			"u2": {ID: "u2", Name: "Ravi", Email: "ravi@example.com", Role: domain.RoleAdmin},
		},
		categories: []domain.Category{
			{ID: "c1", Name: "Nameplates", ProductCount: 3, IsActive: true},
			{ID: "c2", Name: "Door Signs", ProductCount: 0, IsActive: true},
			{ID: "c3", Name: "Coasters", ProductCount: 0, IsActive: false},
		},
		products: []domain.Product{
			{ID: "p1", Name: "Brass Nameplate", Price: 1200, Stock: 3},
			{ID: "p2", Name: "Teak Door Sign", Price: 850, Stock: 12},
			{ID: "p3", Name: "Resin Coaster Set", Price: 499, Stock: 40},
		},
		toggled: map[string]bool{},
	}
}

func (m *mockAdmin) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Dashboard{TotalOrders: len(m.orders), TotalUsers: len(m.users)}, nil
}

func (m *mockAdmin) ListOrders(ctx context.Context, q domain.ListQuery) (*domain.OrderPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listOrdersCalls++
	if m.failList != nil {
		return nil, m.failList
	}
	page := &domain.OrderPage{Page: q.Page, Pages: 1}
	for _, id := range []string{"o1", "o2"} {
		o, ok := m.orders[id]
		if !ok {
			continue
		}
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(o.OrderNumber, q.Search) {
			continue
		}
		page.Orders = append(page.Orders, o)
	}
	page.Total = len(page.Orders)
	return page, nil
}

func (m *mockAdmin) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrderCalls++
	if m.failGet != nil {
		return nil, m.failGet
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, &serverErr{"Order not found"}
	}
	return &o, nil
}

func (m *mockAdmin) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, id+"="+string(status))
	if m.failUpdate != nil {
		return m.failUpdate
	}
	o := m.orders[id]
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *mockAdmin) ListUsers(ctx context.Context, q domain.ListQuery) (*domain.UserPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	page := &domain.UserPage{Page: q.Page, Pages: 1}
	for _, id := range []string{"u1", "u2"} {
		u := m.users[id]
		if q.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(q.Search)) {
			continue
		}
		page.Users = append(page.Users, u)
	}
	return page, nil
}

func (m *mockAdmin) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleUpdates = append(m.roleUpdates, id+"="+string(role))
	if m.failUpdate != nil {
		return m.failUpdate
	}
	u := m.users[id]
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *mockAdmin) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	return append([]domain.Category(nil), m.categories...), nil
}

func (m *mockAdmin) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	kept := m.categories[:0]
	for _, c := range m.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.categories = kept
	return nil
}

func (m *mockAdmin) SetCategoryActive(ctx context.Context, c domain.Category, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggled[c.ID] = active
	for i := range m.categories {
		if m.categories[i].ID == c.ID {
			m.categories[i].IsActive = active
		}
	}
	return nil
}

// ListProducts serves two products per page.
func (m *mockAdmin) ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productQueries = append(m.productQueries, q)
	if m.failList != nil {
		return nil, m.failList
	}
	var matched []domain.Product
	for _, p := range m.products {
		if q.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			matched = append(matched, p)
		}
	}
	const per = 2
	page := &domain.ProductPage{Page: q.Page, Pages: (len(matched) + per - 1) / per, Total: len(matched)}
	if from := (q.Page - 1) * per; from < len(matched) {
		page.Products = matched[from:min(from+per, len(matched))]
	}
	return page, nil
}

func (m *mockAdmin) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	m.deleted = append(m.deleted, id)
	kept := m.products[:0]
	for _, p := range m.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.products = kept
	return nil
}

type mockCatalog struct {
	mu       sync.Mutex
	queries  []domain.ProductQuery
	products map[string]domain.Product
	failList error
}

func (m *mockCatalog) Products(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.failList != nil {
		return nil, m.failList
	}
	page := &domain.ProductPage{Page: q.Page, Pages: 1}
	for _, id := range []string{"p1", "p2"} {
		if p, ok := m.products[id]; ok && (q.Category == "" || p.Category == q.Category) {
			page.Products = append(page.Products, p)
		}
	}
	page.Total = len(page.Products)
	return page, nil
}

func (m *mockCatalog) Featured(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, &serverErr{"Product not found"}
	}
	return &p, nil
}

func (m *mockCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c1", Name: "Nameplates", Slug: "nameplates", IsActive: true}}, nil
}

type mockCartAPI struct {
	mu       sync.Mutex
	cart     domain.Cart
	adds     int
	failAdd  error
	failGet  error
	clearing int
}

func (m *mockCartAPI) GetCart(ctx context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	c := m.cart
	return &c, nil
}

func (m *mockCartAPI) AddItem(ctx context.Context, item domain.AddToCart) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds++
	if m.failAdd != nil {
		return nil, m.failAdd
	}
	m.cart.Items = append(m.cart.Items, domain.CartItem{
		ID:       "line-" + item.ProductID,
		Product:  item.ProductID,
		Price:    600,
		Quantity: item.Quantity,
	})
	c := m.cart
	return &c, nil
}

func (m *mockCartAPI) UpdateItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cart.Items {
		if m.cart.Items[i].ID == itemID {
			m.cart.Items[i].Quantity = quantity
		}
	}
	c := m.cart
	return &c, nil
}

func (m *mockCartAPI) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.cart.Items[:0]
	for _, it := range m.cart.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	m.cart.Items = kept
	c := m.cart
	return &c, nil
}

func (m *mockCartAPI) ClearCart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearing++
	m.cart = domain.Cart{}
	return nil
}

type mockPayments struct {
	mu          sync.Mutex
	cart        *mockCartAPI
	demoCalls   int
	createCalls int
	amount      int64
	keyCalls    int
	verified    []domain.PaymentVerification
	omitKey     bool
	failDemo    error
	failVerify  error
	failKey     error
}

func (m *mockPayments) CreatePaymentOrder(ctx context.Context, amount int64, addr domain.ShippingAddress) (*domain.GatewayOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.amount = amount
	gw := &domain.GatewayOrder{Key: "rzp_test", Amount: amount * 100, Currency: "INR", GatewayOrderID: "order_rzp_1", OrderID: "o-new"}
	if m.omitKey {
		gw.Key = ""
	}
	return gw, nil
}

func (m *mockPayments) VerifyPayment(ctx context.Context, v domain.PaymentVerification) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, v)
	if m.failVerify != nil {
		return nil, m.failVerify
	}
	m.placed()
	return &domain.Order{ID: v.OrderID, Status: domain.OrderStatusConfirmed}, nil
}

func (m *mockPayments) PaymentKey(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyCalls++
	if m.failKey != nil {
		return "", m.failKey
	}
	return "rzp_live_key", nil
}

func (m *mockPayments) DemoPayment(ctx context.Context, addr domain.ShippingAddress) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demoCalls++
	if m.failDemo != nil {
		return nil, m.failDemo
	}
	m.placed()
	return &domain.Order{ID: "o-demo", ShippingAddress: addr, Status: domain.OrderStatusConfirmed}, nil
}

// placed empties the cart the way the backend does after an order.
func (m *mockPayments) placed() {
	if m.cart != nil {
		_ = m.cart.ClearCart(context.Background())
	}
}

type mockOrdersAPI struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	cancelled []string
	failList  error
}

func (m *mockOrdersAPI) MyOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrdersAPI) MyOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, &serverErr{"Order not found"}
	}
	return &o, nil
}

func (m *mockOrdersAPI) CancelOrder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, id)
	o := m.orders[id]
	o.Status = domain.OrderStatusCancelled
	m.orders[id] = o
	return nil
}

type mockAuthAPI struct {
	users    map[string]domain.User
	password string
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	u, ok := m.users[email]
	if !ok || password != m.password {
		return nil, &serverErr{"Invalid email or password"}
	}
	return &domain.Session{Token: "jwt-" + u.ID, User: u}, nil
}

func (m *mockAuthAPI) Register(ctx context.Context, in port.RegisterInput) (*domain.Session, error) {
	if _, ok := m.users[in.Email]; ok {
		return nil, &serverErr{"User already exists"}
	}
	u := domain.User{ID: "u-new", Name: in.Name, Email: in.Email, Role: domain.RoleUser}
	m.users[in.Email] = u
	return &domain.Session{Token: "jwt-new", User: u}, nil
}

func (m *mockAuthAPI) Profile(ctx context.Context) (*domain.User, error) {
	for _, u := range m.users {
		return &u, nil
	}
	return nil, errDown
}

type mockAuditRepo struct {
	mu      sync.Mutex
	records []domain.TransitionRecord
	fail    error
}

func (m *mockAuditRepo) RecordTransition(ctx context.Context, rec domain.TransitionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAuditRepo) ListTransitions(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.TransitionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TransitionRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.records[i]
		if r.Kind == kind && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
