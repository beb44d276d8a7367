package request

import "github.com/shopspring/decimal"

// OpenRegisterRequest opens a register with the counted starting cash
type OpenRegisterRequest struct {
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

// AddMovementRequest records an income or expense.
// Type, concept and amount are checked by the register rules.
type AddMovementRequest struct {
	Type      string           `json:"type"`
	Concept   string           `json:"concept" validate:"max=255"`
	Amount    *decimal.Decimal `json:"amount"`
	Reference *string          `json:"reference" validate:"omitempty,max=255"`
}

// ConciliateRequest compares a physical count with the system balance
type ConciliateRequest struct {
	PhysicalBalance *decimal.Decimal `json:"physical_balance"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

// CloseRegisterRequest closes the register with the counted cash
type CloseRegisterRequest struct {
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
}
