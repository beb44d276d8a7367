package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/cart"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles getting the session cart
func (h *CartHandler) Get(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	session := cartSession(c, operatorID)

	ct, err := h.cartService.GetCart(c.Request.Context(), businessID, session)
	h.respond(c, session, ct, err, "Cart retrieved successfully")
}

// AddItem handles adding a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	var req request.AddCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	session := cartSession(c, operatorID)

	ct, err := h.cartService.AddItem(c.Request.Context(), businessID, session, req.ProductID, req.Quantity)
	h.respond(c, session, ct, err, "Item added to cart")
}

// UpdateItem handles replacing the quantity of a cart line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "product_id", "product")
	if !ok {
		return
	}
	var req request.UpdateCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	session := cartSession(c, operatorID)

	ct, err := h.cartService.SetQuantity(c.Request.Context(), businessID, session, productID, *req.Quantity)
	h.respond(c, session, ct, err, "Cart item updated")
}

// RemoveItem handles removing a product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "product_id", "product")
	if !ok {
		return
	}
	session := cartSession(c, operatorID)

	ct, err := h.cartService.RemoveItem(c.Request.Context(), businessID, session, productID)
	h.respond(c, session, ct, err, "Cart item removed")
}

// SetDiscount handles setting the cart discount
func (h *CartHandler) SetDiscount(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	var req request.SetDiscountRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, "amount", req.Amount) {
		return
	}
	session := cartSession(c, operatorID)

	ct, err := h.cartService.SetDiscount(c.Request.Context(), businessID, session, *req.Amount)
	h.respond(c, session, ct, err, "Discount applied")
}

// Clear handles emptying the cart
func (h *CartHandler) Clear(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	session := cartSession(c, operatorID)

	if err := h.cartService.Clear(c.Request.Context(), businessID, session); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", response.NewCartResponse(session, cart.New()))
}

func (h *CartHandler) respond(c *gin.Context, session string, ct *cart.Cart, err error, message string) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, response.NewCartResponse(session, ct))
}
