package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the store header printed at the top of a ticket.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem is one printed sale line.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Receipt is the printable ticket of a sale. It is composed from the stored
// sale at print time and never persisted.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	ReceiptNo     string          `json:"receipt_no"`
	ReceiptType   string          `json:"receipt_type,omitempty"`
	Date          string          `json:"date"`
	SaleType      string          `json:"sale_type"`
	PaymentMethod string          `json:"payment_method"`
	Cancelled     bool            `json:"cancelled"`
	Items         []ReceiptItem   `json:"items"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
}

// ClosingSlip is the printable end-of-shift report of a closed register.
type ClosingSlip struct {
	Header          ReceiptHeader   `json:"header"`
	RegisterID      string          `json:"register_id"`
	OpenedAt        string          `json:"opened_at"`
	ClosedAt        string          `json:"closed_at"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
	Difference      decimal.Decimal `json:"difference"`
}
