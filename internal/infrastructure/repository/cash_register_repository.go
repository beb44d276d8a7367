package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/register"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OneOpenRegisterIndex is the partial unique index allowing a single OPEN register per business
const OneOpenRegisterIndex = "idx_cash_registers_one_open"

const pgUniqueViolation = "23505"

type cashRegisterRepository struct {
	db *gorm.DB
}

// NewCashRegisterRepository creates a new cash register repository
func NewCashRegisterRepository(db *gorm.DB) domainRepo.CashRegisterRepository {
	return &cashRegisterRepository{db: db}
}

func (r *cashRegisterRepository) GetOpenRegister(ctx context.Context, businessID uuid.UUID) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND state = ?", businessID, enum.RegisterStateOpen).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &reg, err
}

func (r *cashRegisterRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	err := r.db.WithContext(ctx).Scopes(BusinessScope(ctx)).First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &reg, err
}

func (r *cashRegisterRepository) List(ctx context.Context, businessID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashRegister, int64, error) {
	var registers []entity.CashRegister
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CashRegister{}).Where("business_id = ?", businessID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("opened_at DESC").
		Find(&registers).Error

	return registers, total, err
}

func (r *cashRegisterRepository) CreateRegister(ctx context.Context, reg *entity.CashRegister) error {
	err := r.db.WithContext(ctx).Create(reg).Error
	if isUniqueViolation(err, OneOpenRegisterIndex) {
		return apperror.ErrAlreadyOpen
	}
	return err
}

func (r *cashRegisterRepository) CloseRegister(ctx context.Context, reg *entity.CashRegister) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := lockRegister(tx, reg.ID)
		if err != nil {
			return err
		}
		if !stored.IsOpen() {
			return apperror.ErrNotOpen
		}

		var movements []entity.CashMovement
		if err := tx.Where("register_id = ?", reg.ID).Find(&movements).Error; err != nil {
			return err
		}
		expected := register.ExpectedBalance(stored.OpeningBalance, movements)

		result := tx.Model(&entity.CashRegister{}).
			Where("id = ? AND state = ?", reg.ID, enum.RegisterStateOpen).
			Updates(map[string]interface{}{
				"state":             enum.RegisterStateClosed,
				"closing_balance":   reg.ClosingBalance,
				"expected_at_close": expected,
				"closed_by":         reg.ClosedBy,
				"closed_at":         reg.ClosedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.ErrNotOpen
		}
		reg.ExpectedAtClose = &expected
		return nil
	})
}

func (r *cashRegisterRepository) AppendMovement(ctx context.Context, movement *entity.CashMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := lockRegister(tx, movement.RegisterID)
		if err != nil {
			return err
		}
		if !stored.IsOpen() {
			return apperror.ErrNotOpen
		}
		return tx.Create(movement).Error
	})
}

// lockRegister reads the register row FOR UPDATE. Movement inserts and the
// close both take this lock, so they run one after the other.
func lockRegister(tx *gorm.DB, id uuid.UUID) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "state", "opening_balance").
		First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Cash register")
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *cashRegisterRepository) ListMovements(ctx context.Context, registerID uuid.UUID) ([]entity.CashMovement, error) {
	var movements []entity.CashMovement
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	return movements, err
}

func (r *cashRegisterRepository) CreateConciliation(ctx context.Context, conciliation *entity.CashConciliation) error {
	return r.db.WithContext(ctx).Create(conciliation).Error
}

func (r *cashRegisterRepository) ListConciliations(ctx context.Context, registerID uuid.UUID) ([]entity.CashConciliation, error) {
	var conciliations []entity.CashConciliation
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at DESC").
		Find(&conciliations).Error
	return conciliations, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
