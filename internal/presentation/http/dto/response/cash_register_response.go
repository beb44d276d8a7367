package response

import (
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CashRegisterResponse is a register with its current expected balance
type CashRegisterResponse struct {
	*entity.CashRegister
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
}

// CatalogPriceResponse is the current selling price of a product
type CatalogPriceResponse struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
