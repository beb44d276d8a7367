package cart

import "github.com/shopspring/decimal"

// Snapshot is the serialisable form of a cart
type Snapshot struct {
	Items    []LineItem      `json:"items"`
	Discount decimal.Decimal `json:"discount"`
}

// Snapshot captures the cart's items and discount
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:    c.Items(),
		Discount: c.discount,
	}
}

// Restore rebuilds a cart from a snapshot, re-validating every line
func Restore(s Snapshot) (*Cart, error) {
	c := New()
	for _, it := range s.Items {
		if _, err := c.AddItem(it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return nil, err
		}
	}
	if !s.Discount.IsZero() {
		if _, err := c.SetDiscount(s.Discount); err != nil {
			return nil, err
		}
	}
	return c, nil
}
