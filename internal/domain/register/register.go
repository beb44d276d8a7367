// Package register holds the cash register rules that do not depend on storage:
// balance arithmetic and validation of movements and conciliations.
package register

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Totals splits a register's movements by type
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// SumMovements adds up incomes and expenses
func SumMovements(movements []entity.CashMovement) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, m := range movements {
		switch m.Type {
		case enum.MovementTypeIncome:
			t.Income = t.Income.Add(m.Amount)
		case enum.MovementTypeExpense:
			t.Expense = t.Expense.Add(m.Amount)
		}
	}
	return t
}

// ExpectedBalance is opening + Σ income − Σ expense over the full movement list
func ExpectedBalance(opening decimal.Decimal, movements []entity.CashMovement) decimal.Decimal {
	t := SumMovements(movements)
	return opening.Add(t.Income).Sub(t.Expense)
}

func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ValidateBalance rejects negative counted amounts and fractions of a cent
func ValidateBalance(amount decimal.Decimal) error {
	if amount.IsNegative() || !wholeCents(amount) {
		return apperror.ErrInvalidAmount
	}
	return nil
}

// NewRegister builds an OPEN register. Persisting it is the caller's job.
func NewRegister(businessID, operatorID uuid.UUID, openingBalance decimal.Decimal, now time.Time) (*entity.CashRegister, error) {
	if err := ValidateBalance(openingBalance); err != nil {
		return nil, err
	}
	return &entity.CashRegister{
		BusinessID:     businessID,
		State:          enum.RegisterStateOpen,
		OpeningBalance: openingBalance,
		OpenedBy:       operatorID,
		OpenedAt:       now,
	}, nil
}

// MovementInput is an unvalidated movement request
type MovementInput struct {
	Type      string
	Concept   string
	Amount    decimal.Decimal
	Reference *string
}

// NewMovement validates in and builds a movement for an open register
func NewMovement(reg *entity.CashRegister, operatorID uuid.UUID, in MovementInput) (*entity.CashMovement, error) {
	typ, ok := enum.ParseMovementType(in.Type)
	if !ok {
		return nil, apperror.ErrInvalidMovementType
	}
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return nil, apperror.ErrEmptyConcept
	}
	if !in.Amount.IsPositive() || !wholeCents(in.Amount) {
		return nil, apperror.ErrInvalidAmount
	}
	if !reg.IsOpen() {
		return nil, apperror.ErrNotOpen
	}

	var ref *string
	if in.Reference != nil {
		if r := strings.TrimSpace(*in.Reference); r != "" {
			ref = &r
		}
	}

	return &entity.CashMovement{
		RegisterID: reg.ID,
		BusinessID: reg.BusinessID,
		Type:       typ,
		Concept:    concept,
		Amount:     in.Amount,
		Reference:  ref,
		OperatorID: operatorID,
	}, nil
}

// NewConciliation compares a physical count against the system balance.
// The register is reconciled only when the difference is exactly zero.
func NewConciliation(reg *entity.CashRegister, movements []entity.CashMovement, physical decimal.Decimal, notes string, operatorID uuid.UUID) (*entity.CashConciliation, error) {
	if err := ValidateBalance(physical); err != nil {
		return nil, err
	}
	if !reg.IsOpen() {
		return nil, apperror.ErrNotOpen
	}

	system := ExpectedBalance(reg.OpeningBalance, movements)
	diff := physical.Sub(system)

	c := &entity.CashConciliation{
		RegisterID:      reg.ID,
		BusinessID:      reg.BusinessID,
		SystemBalance:   system,
		PhysicalBalance: physical,
		Difference:      diff,
		Reconciled:      diff.IsZero(),
		OperatorID:      operatorID,
	}
	if n := strings.TrimSpace(notes); n != "" {
		c.Notes = &n
	}
	return c, nil
}
