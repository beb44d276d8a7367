package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create stores the sale header and its items atomically
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, businessID uuid.UUID, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// Cancel moves a PAID sale to CANCELLED and returns apperror.ErrAlreadyCancelled
	// when the stored sale is no longer PAID
	Cancel(ctx context.Context, id uuid.UUID) error
	// DailyTotals aggregates PAID sales created at or after since, one row per calendar day
	DailyTotals(ctx context.Context, businessID uuid.UUID, since time.Time) ([]DailyTotal, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination    *pagination.PaginationParams
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentMethod string
}

// DailyTotal is the revenue of one day
type DailyTotal struct {
	Day   time.Time       `json:"day"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}
