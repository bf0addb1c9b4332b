package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/adapter/api"
	"github.com/ambikamber/ambikamber.com/internal/config"
	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/metrics"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

const (
	sessionKey = "session"
	deskKey    = "desk"

	loginPath = "/login"
)

var errBadRequest = errors.New("bad request")

// HTTPDeps wires the gateway's HTTP surface.
type HTTPDeps struct {
	Auth       *service.AuthService
	Admin      port.AdminAPI
	Catalog    port.CatalogAPI
	Cart       port.CartAPI
	Orders     port.OrdersAPI
	Payments   port.PaymentAPI
	Sessions   port.SessionStore
	Audit      *service.AuditService
	Desks      *gate.Registry[*Desk]
	Notify     port.Notifier
	Pricing    config.PricingConfig
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	CookieName string
	SessionTTL time.Duration
}

type HTTPHandler struct {
	auth       *service.AuthService
	admin      port.AdminAPI
	catalog    *service.Catalog
	cart       port.CartAPI
	orders     port.OrdersAPI
	payments   port.PaymentAPI
	sessions   port.SessionStore
	audit      *service.AuditService
	desks      *gate.Registry[*Desk]
	notify     port.Notifier
	pricing    config.PricingConfig
	metrics    *metrics.Metrics
	logger     *zap.Logger
	cookieName string
	sessionTTL time.Duration
}

// Response is the envelope of every JSON answer. Notices are the toasts
// raised while serving the call.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Notices []Notice `json:"notices,omitempty"`
}

// GateView is a gate snapshot plus, after a cancel, the value the selector
// goes back to.
type GateView struct {
	gate.Snapshot
	Selected string `json:"selected,omitempty"`
}

func NewHTTPHandler(d HTTPDeps) *HTTPHandler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Notify == nil {
		d.Notify = ContextNotifier{}
	}
	return &HTTPHandler{
		auth:       d.Auth,
		admin:      d.Admin,
		catalog:    service.NewCatalog(d.Catalog, d.Notify),
		cart:       d.Cart,
		orders:     d.Orders,
		payments:   d.Payments,
		sessions:   d.Sessions,
		audit:      d.Audit,
		desks:      d.Desks,
		notify:     d.Notify,
		pricing:    d.Pricing,
		metrics:    d.Metrics,
		logger:     d.Logger,
		cookieName: d.CookieName,
		sessionTTL: d.SessionTTL,
	}
}

func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	g := r.Group("/", h.observe, h.session)

	auth := g.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)

	g.GET("/products", h.Products)
	g.GET("/products/featured", h.FeaturedProducts)
	g.GET("/products/:id", h.Product)
	g.GET("/categories", h.Categories)
	g.GET("/cart/summary", h.CartSummary)
	g.POST("/checkout/quote", h.requireLogin, h.CheckoutQuote)
	g.POST("/checkout/demo", h.requireLogin, h.CheckoutDemo)
	g.GET("/orders", h.requireLogin, h.MyOrders)
	g.POST("/orders/:id/cancel", h.requireLogin, h.CancelMyOrder)

	admin := g.Group("/admin", h.requireAdmin)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/categories", h.ListCategories)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.POST("/categories/:id/toggle", h.ToggleCategory)
	admin.GET("/products", h.AdminProducts)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.GET("/audit/:kind/:id", h.History)

	admin.POST("/views", h.OpenView)
	views := admin.Group("/views/:view", h.withDesk)
	views.GET("/orders", h.ListOrders)
	views.GET("/orders/:id", h.GetOrder)
	views.POST("/orders/:id/status", h.RequestStatus)
	views.GET("/users", h.ListUsers)
	views.POST("/users/:id/role", h.RequestRole)
	views.GET("/gates/:kind", h.GateState)
	views.POST("/gates/:kind/:action", h.GateAction)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// session binds the request to the caller's session id, minting one the
// first time a browser shows up.
func (h *HTTPHandler) session(c *gin.Context) {
	id, err := c.Cookie(h.cookieName)
	if err != nil || id == "" {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, id, int(h.sessionTTL.Seconds()), "/", "", false, true)
	}
	ctx := withNotices(port.WithSessionID(c.Request.Context(), id))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func (h *HTTPHandler) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	took := time.Since(start)
	h.metrics.ObserveHTTP(c.FullPath(), c.Writer.Status(), took)
	h.logger.Debug("request served",
		zap.String("action", logging.ActionHTTPRequest),
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("took", took),
	)
}

func (h *HTTPHandler) requireLogin(c *gin.Context) {
	sess, err := h.auth.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func (h *HTTPHandler) requireAdmin(c *gin.Context) {
	sess, err := h.auth.RequireAdmin(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// withDesk resolves the view and refuses views minted by another session.
func (h *HTTPHandler) withDesk(c *gin.Context) {
	d, ok := h.desks.Lookup(c.Param("view"))
	if !ok || !d.ownedBy(port.SessionIDFrom(c.Request.Context())) {
		h.respond(c, http.StatusNotFound, Response{Message: "view not found"})
		c.Abort()
		return
	}
	c.Set(deskKey, d)
	c.Next()
}

func deskFrom(c *gin.Context) *Desk {
	return c.MustGet(deskKey).(*Desk)
}

func sessionFrom(c *gin.Context) *domain.Session {
	return c.MustGet(sessionKey).(*domain.Session)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, http.StatusBadRequest, Response{Message: "email and password are required"})
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, sess.User)
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	h.ok(c, nil)
}

// Me returns the signed-in user; ?refresh=true re-reads the profile first.
func (h *HTTPHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	current := h.auth.Current
	if c.Query("refresh") == "true" {
		current = h.auth.Refresh
	}
	sess, err := current(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, sess.User)
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	d, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, d)
}

func (h *HTTPHandler) OpenView(c *gin.Context) {
	id := uuid.NewString()
	h.desks.Get(id).claim(port.SessionIDFrom(c.Request.Context()))
	h.respond(c, http.StatusCreated, Response{Success: true, Data: gin.H{"viewId": id}})
}

func listQuery(c *gin.Context) (domain.ListQuery, error) {
	q := domain.ListQuery{Page: 1, Search: c.Query("search"), Status: c.Query("status")}
	if p := c.Query("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return q, fmt.Errorf("page %q: %w", p, errBadRequest)
		}
		q.Page = n
	}
	return q, nil
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d := deskFrom(c)
	if err := d.Orders.Load(c.Request.Context(), q); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, d.Orders.Page())
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	o, err := deskFrom(c).Orders.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, o)
}

func (h *HTTPHandler) RequestStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, http.StatusBadRequest, Response{Message: "status is required"})
		return
	}
	d := deskFrom(c)
	if _, err := d.Orders.RequestStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, GateView{Snapshot: d.Orders.Gate().Snapshot()})
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d := deskFrom(c)
	if err := d.Users.Load(c.Request.Context(), q); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, d.Users.Page())
}

func (h *HTTPHandler) RequestRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, http.StatusBadRequest, Response{Message: "role is required"})
		return
	}
	d := deskFrom(c)
	if _, err := d.Users.RequestRole(c.Request.Context(), c.Param("id"), domain.Role(req.Role)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, GateView{Snapshot: d.Users.Gate().Snapshot()})
}

func (h *HTTPHandler) GateState(c *gin.Context) {
	g, ok := deskFrom(c).Gate(c.Param("kind"))
	if !ok {
		h.respond(c, http.StatusNotFound, Response{Message: "unknown gate"})
		return
	}
	h.ok(c, GateView{Snapshot: g.Snapshot()})
}

// GateAction drives the open request: continue, confirm or cancel. A failed
// commit still answers with the gate so the UI can show where it ended.
func (h *HTTPHandler) GateAction(c *gin.Context) {
	g, ok := deskFrom(c).Gate(c.Param("kind"))
	if !ok {
		h.respond(c, http.StatusNotFound, Response{Message: "unknown gate"})
		return
	}

	ctx := c.Request.Context()
	var (
		err      error
		reverted string
	)
	switch c.Param("action") {
	case "continue":
		_, err = g.Continue(ctx)
	case "confirm":
		_, err = g.Confirm(ctx)
	case "cancel":
		reverted, err = g.Cancel(ctx)
	default:
		h.respond(c, http.StatusNotFound, Response{Message: "unknown gate action"})
		return
	}

	view := GateView{Snapshot: g.Snapshot(), Selected: reverted}
	if err != nil {
		h.failWith(c, err, view)
		return
	}
	h.ok(c, view)
}

func (h *HTTPHandler) History(c *gin.Context) {
	kind, err := domain.ParseEntityKind(c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			h.fail(c, fmt.Errorf("limit %q: %w", l, errBadRequest))
			return
		}
	}
	recs, err := h.audit.History(c.Request.Context(), kind, c.Param("id"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, recs)
}

func (h *HTTPHandler) categories(c *gin.Context) (*service.CategoriesView, bool) {
	v := service.NewCategoriesView(h.admin, h.notify)
	if err := v.Load(c.Request.Context()); err != nil {
		h.fail(c, err)
		return nil, false
	}
	return v, true
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	v, ok := h.categories(c)
	if !ok {
		return
	}
	h.ok(c, v.Filter(c.Query("search")))
}

func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	v, ok := h.categories(c)
	if !ok {
		return
	}
	if err := v.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, v.Filter(""))
}

func (h *HTTPHandler) ToggleCategory(c *gin.Context) {
	v, ok := h.categories(c)
	if !ok {
		return
	}
	if err := v.ToggleActive(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, v.Filter(""))
}

func productQuery(c *gin.Context) (domain.ProductQuery, error) {
	q := domain.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	ints := []struct {
		name string
		dst  *int64
	}{{"minPrice", &q.MinPrice}, {"maxPrice", &q.MaxPrice}}
	for _, f := range ints {
		if v := c.Query(f.name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return q, fmt.Errorf("%s %q: %w", f.name, v, errBadRequest)
			}
			*f.dst = n
		}
	}
	lq, err := listQuery(c)
	q.Page = lq.Page
	return q, err
}

func (h *HTTPHandler) Products(c *gin.Context) {
	q, err := productQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.catalog.Browse(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, page)
}

func (h *HTTPHandler) FeaturedProducts(c *gin.Context) {
	products, err := h.catalog.Featured(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, products)
}

func (h *HTTPHandler) Product(c *gin.Context) {
	p, err := h.catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, p)
}

func (h *HTTPHandler) Categories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, cats)
}

func (h *HTTPHandler) AdminProducts(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v := service.NewProductsView(h.admin, h.notify)
	if err := v.Load(c.Request.Context(), q); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, v.Page())
}

// DeleteProduct answers with the page the product was on, reloaded.
func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	v := service.NewProductsView(h.admin, h.notify)
	if err := v.Load(ctx, q); err != nil {
		h.fail(c, err)
		return
	}
	if err := v.Delete(ctx, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, v.Page())
}

func (h *HTTPHandler) CartSummary(c *gin.Context) {
	svc := service.NewCartService(h.cart, h.sessions, h.notify, h.pricing.Cart)
	cart, err := svc.Fetch(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	summary := svc.Summary()
	h.ok(c, gin.H{
		"cart":            cart,
		"summary":         summary,
		"freeShippingGap": summary.FreeShippingGap(pricing.FreeShippingThreshold),
	})
}

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

// checkout runs the wizard up to the payment step for the posted address.
func (h *HTTPHandler) checkout(c *gin.Context) (*service.Checkout, bool) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, http.StatusBadRequest, Response{Message: "invalid request body"})
		return nil, false
	}

	ctx := c.Request.Context()
	cart := service.NewCartService(h.cart, h.sessions, h.notify, h.pricing.Cart)
	co, err := service.StartCheckout(ctx, cart, h.payments, h.notify, h.pricing.Checkout, &sessionFrom(c).User, h.logger)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := co.SubmitAddress(ctx, req.ShippingAddress); err != nil {
		h.fail(c, err)
		return nil, false
	}
	return co, true
}

func (h *HTTPHandler) CheckoutQuote(c *gin.Context) {
	co, ok := h.checkout(c)
	if !ok {
		return
	}
	h.ok(c, gin.H{
		"step":            co.Step().String(),
		"shippingAddress": co.Address(),
		"quote":           co.Quote(),
	})
}

func (h *HTTPHandler) CheckoutDemo(c *gin.Context) {
	co, ok := h.checkout(c)
	if !ok {
		return
	}
	order, err := co.PayDemo(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, order)
}

func (h *HTTPHandler) MyOrders(c *gin.Context) {
	orders, err := service.NewCustomerOrders(h.orders, h.notify).List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, orders)
}

func (h *HTTPHandler) CancelMyOrder(c *gin.Context) {
	o, err := service.NewCustomerOrders(h.orders, h.notify).Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, o)
}

func (h *HTTPHandler) ok(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, Response{Success: true, Data: data})
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	h.failWith(c, err, nil)
}

func (h *HTTPHandler) failWith(c *gin.Context, err error, data any) {
	status, message := statusFor(err)
	if status == http.StatusUnauthorized {
		c.Header("Location", loginPath)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.respond(c, status, Response{Message: message, Data: data})
}

func (h *HTTPHandler) respond(c *gin.Context, status int, resp Response) {
	resp.Notices = noticesFrom(c.Request.Context())
	c.JSON(status, resp)
}

// statusFor maps service and gate errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var verr *service.ValidationError
	var apiErr *api.APIError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, api.ErrUnauthorized):
		return http.StatusUnauthorized, "please log in"
	case errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden, "admin access required"
	case errors.Is(err, gate.ErrEntityBusy):
		return http.StatusConflict, gate.ErrEntityBusy.Error()
	case errors.Is(err, gate.ErrCommitInProgress):
		return http.StatusConflict, gate.ErrCommitInProgress.Error()
	case errors.Is(err, gate.ErrInvalidAction):
		return http.StatusConflict, gate.ErrInvalidAction.Error()
	case errors.Is(err, service.ErrCategoryInUse), errors.Is(err, service.ErrNotCancelable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, gate.ErrNoChange):
		return http.StatusBadRequest, gate.ErrNoChange.Error()
	case errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrUnknownKind), errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotLoaded):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &apiErr):
		msg := api.MessageOr(err, "upstream error")
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, msg
		}
		return http.StatusBadGateway, msg
	}
	return http.StatusInternalServerError, "internal error"
}
