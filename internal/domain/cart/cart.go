// Package cart holds the in-memory shopping cart of a point-of-sale session.
//
// A Cart keeps its totals consistent with its items after every mutation:
//
//	subtotal = Σ quantity × unitPrice
//	tax      = round2(subtotal × TaxRate)
//	total    = subtotal + tax − discount
//
// with 0 ≤ discount ≤ subtotal + tax. A Cart is not safe for concurrent use.
package cart

import (
	"strings"

	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TaxRate is the VAT applied to every cart
var TaxRate = decimal.RequireFromString("0.18")

// moneyPlaces matches the numeric(12,2) money columns
const moneyPlaces = 2

func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyPlaces))
}

// LineItem is one product in the cart. UnitPrice is captured on the first add
// and does not change while the line exists.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns quantity × unit price
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the derived money summary of a cart
type Totals struct {
	SubTotal decimal.Decimal `json:"sub_total"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Payable is the amount before discount
func (t Totals) Payable() decimal.Decimal {
	return t.SubTotal.Add(t.Tax)
}

// Cart is an ordered set of line items keyed by product id
type Cart struct {
	items    []LineItem
	discount decimal.Decimal
	totals   Totals
}

// New returns an empty cart
func New() *Cart {
	c := &Cart{}
	c.recompute()
	return c
}

// AddItem adds quantity units of a product. Adding a product already in the
// cart increments its quantity and keeps the original unit price.
func (c *Cart) AddItem(productID string, quantity int, unitPrice decimal.Decimal) (Totals, error) {
	if strings.TrimSpace(productID) == "" {
		return c.totals, apperror.NewValidationError([]apperror.FieldError{
			{Field: "product_id", Message: "product_id is required"},
		})
	}
	if quantity <= 0 {
		return c.totals, apperror.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() || !wholeCents(unitPrice) {
		return c.totals, apperror.ErrInvalidAmount
	}

	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, LineItem{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}
	c.recompute()
	return c.totals, nil
}

// RemoveItem drops a product from the cart. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID string) Totals {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.recompute()
	}
	return c.totals
}

// SetQuantity replaces the quantity of a product already in the cart.
// A quantity of 0 removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) (Totals, error) {
	if quantity < 0 {
		return c.totals, apperror.ErrInvalidQuantity
	}
	if quantity == 0 {
		return c.RemoveItem(productID), nil
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c.totals, apperror.NewNotFoundError("Cart item")
	}
	c.items[i].Quantity = quantity
	c.recompute()
	return c.totals, nil
}

// SetDiscount sets the absolute discount for the whole cart
func (c *Cart) SetDiscount(amount decimal.Decimal) (Totals, error) {
	if amount.IsNegative() || !wholeCents(amount) || amount.GreaterThan(c.totals.Payable()) {
		return c.totals, apperror.ErrInvalidDiscount
	}
	c.discount = amount
	c.recompute()
	return c.totals, nil
}

// Clear empties the cart and resets the discount
func (c *Cart) Clear() {
	c.items = nil
	c.discount = decimal.Zero
	c.recompute()
}

// Totals returns the current totals
func (c *Cart) Totals() Totals {
	return c.totals
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalQuantity is the number of units across all lines
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) indexOf(productID string) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	subTotal := decimal.Zero
	for _, it := range c.items {
		subTotal = subTotal.Add(it.LineTotal())
	}
	tax := subTotal.Mul(TaxRate).Round(moneyPlaces)
	payable := subTotal.Add(tax)

	// a smaller cart can no longer carry the old discount
	if c.discount.GreaterThan(payable) {
		c.discount = payable
	}

	c.totals = Totals{
		SubTotal: subTotal,
		Tax:      tax,
		Discount: c.discount,
		Total:    payable.Sub(c.discount),
	}
}
