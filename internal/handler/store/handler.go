package store

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/cart"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/internal/service/checkout"
	"github.com/veracare/marketplace-api/pkg/errors"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

// HeaderCartSession carries the opaque cart session token. The server
// mints one on first use and echoes it back.
const HeaderCartSession = "X-Cart-Session"

type Handler struct {
	productRepo repository.ProductRepository
	carts       *cart.Store
	rules       cart.Rules
	checkoutSvc checkout.CheckoutService
}

func NewHandler(productRepo repository.ProductRepository, carts *cart.Store, rules cart.Rules, checkoutSvc checkout.CheckoutService) *Handler {
	return &Handler{
		productRepo: productRepo,
		carts:       carts,
		rules:       rules,
		checkoutSvc: checkoutSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	store := r.Group("/store")
	{
		store.GET("/products", h.ListProducts)
		store.GET("/products/:slug", h.GetProduct)

		store.GET("/cart", h.GetCart)
		store.POST("/cart/items", h.AddItem)
		store.PATCH("/cart/items/:product_id", h.UpdateItem)
		store.DELETE("/cart/items/:product_id", h.RemoveItem)
		store.POST("/cart/promo", h.ApplyPromo)

		store.POST("/checkout", h.Checkout)
		store.GET("/orders/:id", h.GetOrder)
		store.POST("/orders/:id/paid", h.MarkOrderPaid)
	}
}

func (h *Handler) ListProducts(c *gin.Context) {
	var filters model.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.productRepo.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	httputil.RespondWithSuccess(c, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.productRepo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("product", err))
		return
	}
	httputil.RespondWithSuccess(c, product)
}

// session returns the cart token, minting one when the header is
// absent. The token is always echoed so clients can persist it.
func (h *Handler) session(c *gin.Context) string {
	token := c.GetHeader(HeaderCartSession)
	if token == "" {
		token = cart.NewSessionToken()
	}
	c.Header(HeaderCartSession, token)
	return token
}

func (h *Handler) respondWithCart(c *gin.Context, token string) {
	items, promo, err := h.carts.Get(c.Request.Context(), token)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.rules.Compute(items, promo))
}

func (h *Handler) GetCart(c *gin.Context) {
	h.respondWithCart(c, h.session(c))
}

func (h *Handler) AddItem(c *gin.Context) {
	token := h.session(c)

	var req model.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}
	product, err := h.productRepo.Get(c.Request.Context(), productID)
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("product", err))
		return
	}
	if !product.InStock {
		httputil.RespondWithError(c, errors.BadRequest("product is out of stock", nil))
		return
	}

	item := &model.CartItem{
		ProductID:  product.ID.String(),
		Slug:       product.Slug,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		Quantity:   req.Quantity,
	}
	if err := h.carts.AddItem(c.Request.Context(), token, item); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respondWithCart(c, token)
}

// UpdateItem applies a quantity delta. Decrementing a single-unit line
// removes it.
func (h *Handler) UpdateItem(c *gin.Context) {
	token := h.session(c)

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req model.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.carts.SetQuantity(c.Request.Context(), token, productID, req.Quantity); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respondWithCart(c, token)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	token := h.session(c)

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), token, productID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respondWithCart(c, token)
}

func (h *Handler) ApplyPromo(c *gin.Context) {
	token := h.session(c)

	var req model.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Exact, case-sensitive match. An unknown code is a validation
	// error rather than silently yielding a zero discount.
	if req.Code != h.rules.PromoCode {
		httputil.RespondWithError(c, errors.BadRequest("invalid promo code", nil))
		return
	}

	if err := h.carts.SetPromoCode(c.Request.Context(), token, req.Code); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respondWithCart(c, token)
}

// Checkout creates the pending order and hands off to the payment
// provider. On success the session cart is cleared.
func (h *Handler) Checkout(c *gin.Context) {
	token := h.session(c)

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.checkoutSvc.Checkout(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.carts.Clear(c.Request.Context(), token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

// GetOrder returns a single order, for the post-checkout confirmation
// page.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.checkoutSvc.GetOrder(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}

// MarkOrderPaid is the payment provider's success callback.
func (h *Handler) MarkOrderPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	if err := h.checkoutSvc.MarkPaid(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "status": model.OrderStatusPaid})
}
