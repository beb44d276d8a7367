package response

import (
	"github.com/sangkips/pos-api/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// CartItemResponse is one cart line
type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse is the cart of a checkout session with its totals
type CartResponse struct {
	SessionID     string             `json:"session_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	SubTotal      decimal.Decimal    `json:"sub_total"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
}

// NewCartResponse builds the response for a session cart
func NewCartResponse(sessionID string, c *cart.Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items()))
	for _, it := range c.Items() {
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}
	totals := c.Totals()
	return &CartResponse{
		SessionID:     sessionID,
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		TaxRate:       cart.TaxRate,
		SubTotal:      totals.SubTotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
	}
}
