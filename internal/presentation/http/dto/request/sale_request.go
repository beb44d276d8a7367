package request

import "github.com/google/uuid"

// CheckoutRequest turns the session cart into a sale
type CheckoutRequest struct {
	CustomerID    *uuid.UUID `json:"customer_id"`
	SaleType      string     `json:"sale_type" validate:"required,oneof=CASH CREDIT"`
	PaymentMethod string     `json:"payment_method" validate:"required,max=50"`
	ReceiptType   *string    `json:"receipt_type" validate:"omitempty,max=50"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	PaymentMethod string `form:"payment_method"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
