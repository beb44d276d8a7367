package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest adds units of a catalog product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest replaces the quantity of a cart line
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// SetDiscountRequest sets the absolute cart discount
type SetDiscountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}
