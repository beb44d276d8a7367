package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/register"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CashRegisterService drives the register state machine. Every transition is
// validated first, then written; the returned entity reflects the stored state
// only after the repository call succeeded.
type CashRegisterService struct {
	repo repository.CashRegisterRepository
	now  func() time.Time
}

// NewCashRegisterService creates a new cash register service
func NewCashRegisterService(repo repository.CashRegisterRepository) *CashRegisterService {
	return &CashRegisterService{
		repo: repo,
		now:  time.Now,
	}
}

// RegisterSummary is the cash report of one register
type RegisterSummary struct {
	Register        *entity.CashRegister  `json:"register"`
	OpeningBalance  decimal.Decimal       `json:"opening_balance"`
	TotalIncome     decimal.Decimal       `json:"total_income"`
	TotalExpense    decimal.Decimal       `json:"total_expense"`
	ExpectedBalance decimal.Decimal       `json:"expected_balance"`
	Incomes         []entity.CashMovement `json:"incomes"`
	Expenses        []entity.CashMovement `json:"expenses"`
}

// Open starts a new register for the business
func (s *CashRegisterService) Open(ctx context.Context, businessID, operatorID uuid.UUID, openingBalance decimal.Decimal) (*entity.CashRegister, error) {
	reg, err := register.NewRegister(businessID, operatorID, openingBalance, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetOpenRegister(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrAlreadyOpen
	}

	if err := s.repo.CreateRegister(ctx, reg); err != nil {
		if errors.Is(err, apperror.ErrAlreadyOpen) {
			log.Warn().Str("business_id", businessID.String()).Msg("concurrent register open rejected")
		}
		return nil, err
	}

	log.Info().
		Str("business_id", businessID.String()).
		Str("register_id", reg.ID.String()).
		Str("opening_balance", openingBalance.StringFixed(2)).
		Msg("cash register opened")
	return reg, nil
}

// AddMovement appends an income or expense to an open register
func (s *CashRegisterService) AddMovement(ctx context.Context, businessID, registerID, operatorID uuid.UUID, in register.MovementInput) (*entity.CashMovement, error) {
	reg, err := s.GetRegister(ctx, businessID, registerID)
	if err != nil {
		return nil, err
	}

	movement, err := register.NewMovement(reg, operatorID, in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AppendMovement(ctx, movement); err != nil {
		return nil, err
	}

	log.Info().
		Str("register_id", registerID.String()).
		Str("type", movement.Type.String()).
		Str("amount", movement.Amount.StringFixed(2)).
		Msg("cash movement recorded")
	return movement, nil
}

// Conciliate records a physical count against the current expected balance.
// The register stays open.
func (s *CashRegisterService) Conciliate(ctx context.Context, businessID, registerID, operatorID uuid.UUID, physicalBalance decimal.Decimal, notes string) (*entity.CashConciliation, error) {
	if err := register.ValidateBalance(physicalBalance); err != nil {
		return nil, err
	}

	reg, err := s.GetRegister(ctx, businessID, registerID)
	if err != nil {
		return nil, err
	}
	if !reg.IsOpen() {
		return nil, apperror.ErrNotOpen
	}

	movements, err := s.repo.ListMovements(ctx, registerID)
	if err != nil {
		return nil, err
	}

	conciliation, err := register.NewConciliation(reg, movements, physicalBalance, notes, operatorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateConciliation(ctx, conciliation); err != nil {
		return nil, err
	}

	log.Info().
		Str("register_id", registerID.String()).
		Str("difference", conciliation.Difference.StringFixed(2)).
		Bool("reconciled", conciliation.Reconciled).
		Msg("cash conciliation recorded")
	return conciliation, nil
}

// Close moves an open register to CLOSED. A non-zero difference between the
// counted and the expected balance does not block closing.
func (s *CashRegisterService) Close(ctx context.Context, businessID, registerID, operatorID uuid.UUID, closingBalance decimal.Decimal) (*entity.CashRegister, error) {
	if err := register.ValidateBalance(closingBalance); err != nil {
		return nil, err
	}

	reg, err := s.GetRegister(ctx, businessID, registerID)
	if err != nil {
		return nil, err
	}
	if !reg.IsOpen() {
		return nil, apperror.ErrNotOpen
	}

	closedAt := s.now()
	closed := *reg
	closed.State = enum.RegisterStateClosed
	closed.ClosingBalance = &closingBalance
	closed.ExpectedAtClose = nil
	closed.ClosedBy = &operatorID
	closed.ClosedAt = &closedAt

	if err := s.repo.CloseRegister(ctx, &closed); err != nil {
		if errors.Is(err, apperror.ErrNotOpen) {
			log.Warn().Str("register_id", registerID.String()).Msg("close rejected, register already closed")
		}
		return nil, err
	}

	log.Info().
		Str("business_id", businessID.String()).
		Str("register_id", registerID.String()).
		Str("closing_balance", closingBalance.StringFixed(2)).
		Str("expected_balance", closed.ExpectedAtClose.StringFixed(2)).
		Msg("cash register closed")
	return &closed, nil
}

// ExpectedBalance recomputes opening + incomes − expenses from the stored movements
func (s *CashRegisterService) ExpectedBalance(ctx context.Context, businessID, registerID uuid.UUID) (decimal.Decimal, error) {
	reg, err := s.GetRegister(ctx, businessID, registerID)
	if err != nil {
		return decimal.Zero, err
	}
	movements, err := s.repo.ListMovements(ctx, registerID)
	if err != nil {
		return decimal.Zero, err
	}
	return register.ExpectedBalance(reg.OpeningBalance, movements), nil
}

// GetOpenRegister returns the business's open register
func (s *CashRegisterService) GetOpenRegister(ctx context.Context, businessID uuid.UUID) (*entity.CashRegister, error) {
	reg, err := s.repo.GetOpenRegister(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperror.NewNotFoundError("Open cash register")
	}
	return reg, nil
}

// GetRegister returns a register owned by the business
func (s *CashRegisterService) GetRegister(ctx context.Context, businessID, registerID uuid.UUID) (*entity.CashRegister, error) {
	reg, err := s.repo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.BusinessID != businessID {
		return nil, apperror.NewNotFoundError("Cash register")
	}
	return reg, nil
}

// ListMovements returns the register's movements, newest first
func (s *CashRegisterService) ListMovements(ctx context.Context, businessID, registerID uuid.UUID) ([]entity.CashMovement, error) {
	if _, err := s.GetRegister(ctx, businessID, registerID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, registerID)
}

// ListConciliations returns every count recorded on the register
func (s *CashRegisterService) ListConciliations(ctx context.Context, businessID, registerID uuid.UUID) ([]entity.CashConciliation, error) {
	if _, err := s.GetRegister(ctx, businessID, registerID); err != nil {
		return nil, err
	}
	return s.repo.ListConciliations(ctx, registerID)
}

// Summary splits the register's movements and totals them
func (s *CashRegisterService) Summary(ctx context.Context, businessID, registerID uuid.UUID) (*RegisterSummary, error) {
	reg, err := s.GetRegister(ctx, businessID, registerID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, registerID)
	if err != nil {
		return nil, err
	}

	totals := register.SumMovements(movements)
	summary := &RegisterSummary{
		Register:        reg,
		OpeningBalance:  reg.OpeningBalance,
		TotalIncome:     totals.Income,
		TotalExpense:    totals.Expense,
		ExpectedBalance: reg.OpeningBalance.Add(totals.Income).Sub(totals.Expense),
		Incomes:         []entity.CashMovement{},
		Expenses:        []entity.CashMovement{},
	}
	for _, m := range movements {
		if m.Type == enum.MovementTypeIncome {
			summary.Incomes = append(summary.Incomes, m)
		} else {
			summary.Expenses = append(summary.Expenses, m)
		}
	}
	return summary, nil
}

// History lists the business's registers, most recently opened first
func (s *CashRegisterService) History(ctx context.Context, businessID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashRegister, *pagination.Pagination, error) {
	params.Validate()
	registers, total, err := s.repo.List(ctx, businessID, params)
	if err != nil {
		return nil, nil, err
	}
	return registers, pagination.NewPagination(params.Page, params.PerPage, total), nil
}
