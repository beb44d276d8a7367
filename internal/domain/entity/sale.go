package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a completed point-of-sale transaction
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"business_id"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"operator_id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	SaleType      enum.SaleType   `gorm:"type:varchar(10);not null" json:"sale_type"`
	Status        enum.SaleStatus `gorm:"not null;default:0;index" json:"status"`
	TotalProducts int             `gorm:"default:0" json:"total_products"`
	SubTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sub_total"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod string          `gorm:"size:50;not null;index" json:"payment_method"`
	ReceiptType   *string         `gorm:"size:50" json:"receipt_type,omitempty"`
	ReceiptNo     string          `gorm:"size:100;unique;not null" json:"receipt_no"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is a line of a sale with the unit price captured when it was added to the cart
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
