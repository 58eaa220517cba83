package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/metrics"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID uint64) (*domain.OrderSummary, error)
}

type OrderService interface {
	ListForUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	GetForUser(ctx context.Context, userID, orderID uint64) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error)
	InvalidateUserOrders(ctx context.Context, userID uint64)
}

type CartService interface {
	GetCart(ctx context.Context, userID uint64) (*domain.CartView, error)
	AddItem(ctx context.Context, userID, productID uint64, quantity int64) (*domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uint64, quantity int64) error
	RemoveItem(ctx context.Context, userID, itemID uint64) error
	Clear(ctx context.Context, userID uint64) error
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id uint64) (*domain.Product, error)
	Create(ctx context.Context, name string, priceCents int64, description string) (*domain.Product, error)
	Update(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uint64) error
}

type AuthService interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID uint64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uint64, patch services.ProfilePatch) (*domain.User, error)
	DeleteUser(ctx context.Context, userID uint64) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetAdmin(ctx context.Context, userID uint64, isAdmin bool) (*domain.User, error)
}

var (
	_ CheckoutService = (*services.CheckoutService)(nil)
	_ OrderService    = (*services.OrderService)(nil)
	_ CartService     = (*services.CartService)(nil)
	_ ProductService  = (*services.ProductService)(nil)
	_ AuthService     = (*services.AuthService)(nil)
)

type Handler struct {
	checkout  CheckoutService
	orders    OrderService
	carts     CartService
	products  ProductService
	auth      AuthService
	publisher rabbitmq.PublisherInterface
	metrics   *metrics.ServerMetrics
}

func NewHandler(
	checkout CheckoutService,
	orders OrderService,
	carts CartService,
	products ProductService,
	authService AuthService,
	publisher rabbitmq.PublisherInterface,
	m *metrics.ServerMetrics,
) *Handler {
	return &Handler{
		checkout:  checkout,
		orders:    orders,
		carts:     carts,
		products:  products,
		auth:      authService,
		publisher: publisher,
		metrics:   m,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	api.GET("/products", h.ListProducts)
	api.GET("/products/:productId", h.GetProduct)

	user := api.Group("", RequireAuth(h.auth))
	user.GET("/users/me", h.GetProfile)
	user.PUT("/users/me", h.UpdateProfile)
	user.DELETE("/users/me", h.DeleteAccount)

	user.GET("/cart", h.GetCart)
	user.POST("/cart", h.AddCartItem)
	user.DELETE("/cart", h.ClearCart)
	user.PUT("/cart/items/:itemId", h.UpdateCartItem)
	user.DELETE("/cart/items/:itemId", h.RemoveCartItem)
	user.POST("/cart/checkout", h.Checkout)

	user.GET("/orders", h.ListOrders)
	user.GET("/orders/:orderId", h.GetOrder)

	admin := api.Group("/admin", RequireAuth(h.auth), RequireAdmin())
	admin.GET("/users", h.AdminListUsers)
	admin.PUT("/users/:userId/admin", h.AdminSetAdmin)
	admin.DELETE("/users/:userId", h.AdminDeleteUser)
	admin.GET("/orders", h.AdminListOrders)
	admin.PUT("/orders/:orderId/status", h.AdminUpdateOrderStatus)
	admin.POST("/products", h.AdminCreateProduct)
	admin.PUT("/products/:productId", h.AdminUpdateProduct)
	admin.DELETE("/products/:productId", h.AdminDeleteProduct)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Checkout(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	summary, err := h.checkout.Checkout(ctx, userID)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.metrics.ObserveCheckout(metrics.OutcomeFailed)
		} else {
			h.metrics.ObserveCheckout(metrics.OutcomeRejected)
		}
		writeError(c, err)
		return
	}
	h.metrics.ObserveCheckout(metrics.OutcomeCreated)
	h.orders.InvalidateUserOrders(ctx, userID)

	evt := domain.OrderCreatedEvent{
		OrderID:    summary.OrderID,
		UserID:     userID,
		TotalCents: summary.TotalCents,
		CreatedAt:  time.Now().UTC(),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.publisher.Publish(pubCtx, domain.EventOrderCreated, evt); err != nil {
			log.Printf("Failed to publish %s for order %d: %v", domain.EventOrderCreated, evt.OrderID, err)
		}
	}()

	c.JSON(http.StatusCreated, CheckoutResponse{
		Message:    "Order created successfully",
		OrderID:    summary.OrderID,
		TotalCents: summary.TotalCents,
		Total:      formatCents(summary.TotalCents),
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.auth.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.UpdateProfile(c.Request.Context(), currentUserID(c), services.ProfilePatch{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.auth.DeleteUser(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "productId")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.carts.GetCart(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.carts.AddItem(c.Request.Context(), currentUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.carts.UpdateItemQuantity(c.Request.Context(), currentUserID(c), itemID, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), currentUserID(c), itemID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	o, err := h.orders.GetForUser(c.Request.Context(), currentUserID(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) AdminSetAdmin(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.SetAdmin(c.Request.Context(), userID, *req.IsAdmin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	if err := h.auth.DeleteUser(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *Handler) AdminListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) AdminCreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.products.Create(c.Request.Context(), req.Name, *req.PriceCents, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "productId")
	if !ok {
		return
	}
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.products.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AdminDeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "productId")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}
