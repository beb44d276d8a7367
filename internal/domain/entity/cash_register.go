package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashRegister is one physical cash drawer shift, from opening to close.
// At most one register per business may be OPEN; the database enforces it with
// the partial unique index idx_cash_registers_one_open.
type CashRegister struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"business_id"`
	State          enum.RegisterState `gorm:"not null;default:0" json:"state"`
	OpeningBalance decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"opening_balance"`
	ClosingBalance *decimal.Decimal   `gorm:"type:numeric(12,2)" json:"closing_balance,omitempty"`
	// ExpectedAtClose is the system balance computed at the moment of closing
	ExpectedAtClose *decimal.Decimal `gorm:"type:numeric(12,2)" json:"expected_at_close,omitempty"`
	OpenedBy        uuid.UUID        `gorm:"type:uuid;not null" json:"opened_by"`
	ClosedBy        *uuid.UUID       `gorm:"type:uuid" json:"closed_by,omitempty"`
	OpenedAt        time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new register
func (r *CashRegister) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashRegister model
func (CashRegister) TableName() string {
	return "cash_registers"
}

// IsOpen reports whether the register still accepts movements
func (r *CashRegister) IsOpen() bool {
	return r.State == enum.RegisterStateOpen
}

// CashMovement is an immutable income or expense entry in a register's ledger.
// Corrections are recorded as new offsetting movements.
type CashMovement struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	RegisterID uuid.UUID         `gorm:"type:uuid;not null;index" json:"register_id"`
	BusinessID uuid.UUID         `gorm:"type:uuid;not null;index" json:"business_id"`
	Type       enum.MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Concept    string            `gorm:"size:255;not null" json:"concept"`
	Amount     decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Reference  *string           `gorm:"size:255" json:"reference,omitempty"`
	OperatorID uuid.UUID         `gorm:"type:uuid;not null" json:"operator_id"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *CashMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashMovement model
func (CashMovement) TableName() string {
	return "cash_movements"
}

// CashConciliation records one physical count of the drawer against the system balance
type CashConciliation struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RegisterID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"register_id"`
	BusinessID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"business_id"`
	SystemBalance   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"system_balance"`
	PhysicalBalance decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"physical_balance"`
	Difference      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"difference"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	Reconciled      bool            `gorm:"not null" json:"reconciled"`
	OperatorID      uuid.UUID       `gorm:"type:uuid;not null" json:"operator_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new conciliation
func (c *CashConciliation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashConciliation model
func (CashConciliation) TableName() string {
	return "cash_conciliations"
}
