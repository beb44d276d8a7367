package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// CashRegisterRepository persists registers, their movements and conciliations.
// Lookups return (nil, nil) when nothing matches.
type CashRegisterRepository interface {
	GetOpenRegister(ctx context.Context, businessID uuid.UUID) (*entity.CashRegister, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CashRegister, error)
	List(ctx context.Context, businessID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashRegister, int64, error)

	// CreateRegister returns apperror.ErrAlreadyOpen when the business already has an open register
	CreateRegister(ctx context.Context, register *entity.CashRegister) error
	// CloseRegister writes the closing fields only while the stored register is
	// still OPEN and returns apperror.ErrNotOpen otherwise. It sets
	// register.ExpectedAtClose from the movements stored when the close commits;
	// AppendMovement cannot interleave with it.
	CloseRegister(ctx context.Context, register *entity.CashRegister) error

	// AppendMovement returns apperror.ErrNotOpen when the register was closed concurrently
	AppendMovement(ctx context.Context, movement *entity.CashMovement) error
	// ListMovements returns movements newest first
	ListMovements(ctx context.Context, registerID uuid.UUID) ([]entity.CashMovement, error)

	CreateConciliation(ctx context.Context, conciliation *entity.CashConciliation) error
	ListConciliations(ctx context.Context, registerID uuid.UUID) ([]entity.CashConciliation, error)
}
