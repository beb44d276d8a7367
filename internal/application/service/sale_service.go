package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/domain/cart"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sangkips/pos-api/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	defaultSummaryDays = 30
	maxSummaryDays     = 366
)

// SaleService turns session carts into sales and reports on them
type SaleService struct {
	sales repository.SaleRepository
	carts *CartService
	now   func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(sales repository.SaleRepository, carts *CartService) *SaleService {
	return &SaleService{
		sales: sales,
		carts: carts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutInput represents the checkout input
type CheckoutInput struct {
	CustomerID    *uuid.UUID
	SaleType      enum.SaleType
	PaymentMethod string
	ReceiptType   *string
}

// SalesSummary aggregates PAID sales over the last Days days
type SalesSummary struct {
	Days         int                     `json:"days"`
	Total        decimal.Decimal         `json:"total"`
	Count        int64                   `json:"count"`
	DailyAverage decimal.Decimal         `json:"daily_average"`
	ByDay        []repository.DailyTotal `json:"by_day"`
}

// Checkout records the session's cart as a PAID sale. The cart is cleared only
// once the sale is stored.
func (s *SaleService) Checkout(ctx context.Context, businessID, operatorID uuid.UUID, sessionID string, input *CheckoutInput) (*entity.Sale, error) {
	var fieldErrors []apperror.FieldError
	if !input.SaleType.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sale_type", Message: "sale_type must be CASH or CREDIT"})
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payment_method", Message: "payment_method is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	var sale *entity.Sale
	err := s.carts.Consume(ctx, businessID, sessionID, func(c *cart.Cart) error {
		if c.IsEmpty() {
			return apperror.ErrEmptyCart
		}
		built, err := s.buildSale(businessID, operatorID, c, input)
		if err != nil {
			return err
		}
		if err := s.sales.Create(ctx, built); err != nil {
			return err
		}
		sale = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("business_id", businessID.String()).
		Str("sale_id", sale.ID.String()).
		Str("receipt_no", sale.ReceiptNo).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale recorded")
	return sale, nil
}

func (s *SaleService) buildSale(businessID, operatorID uuid.UUID, c *cart.Cart, input *CheckoutInput) (*entity.Sale, error) {
	now := s.now()
	totals := c.Totals()

	items := make([]entity.SaleItem, 0, len(c.Items()))
	for _, line := range c.Items() {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("cart line %q: %w", line.ProductID, err)
		}
		items = append(items, entity.SaleItem{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
		})
	}

	return &entity.Sale{
		ID:            uuid.New(),
		BusinessID:    businessID,
		OperatorID:    operatorID,
		CustomerID:    input.CustomerID,
		SaleType:      input.SaleType,
		Status:        enum.SaleStatusPaid,
		TotalProducts: c.TotalQuantity(),
		SubTotal:      totals.SubTotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		ReceiptType:   input.ReceiptType,
		ReceiptNo:     utils.GenerateReceiptNo(now),
		CreatedAt:     now,
		Items:         items,
	}, nil
}

// GetSale returns a sale with its items
func (s *SaleService) GetSale(ctx context.Context, businessID, saleID uuid.UUID) (*entity.Sale, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.BusinessID != businessID {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales returns sales newest first
func (s *SaleService) ListSales(ctx context.Context, businessID uuid.UUID, params *repository.SaleFilterParams) ([]entity.Sale, *pagination.Pagination, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.sales.List(ctx, businessID, params)
	if err != nil {
		return nil, nil, err
	}
	return sales, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total), nil
}

// CancelSale voids a PAID sale
func (s *SaleService) CancelSale(ctx context.Context, businessID, saleID uuid.UUID) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, businessID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == enum.SaleStatusCancelled {
		return nil, apperror.ErrAlreadyCancelled
	}

	if err := s.sales.Cancel(ctx, saleID); err != nil {
		return nil, err
	}
	sale.Status = enum.SaleStatusCancelled

	log.Info().Str("sale_id", saleID.String()).Str("receipt_no", sale.ReceiptNo).Msg("sale cancelled")
	return sale, nil
}

// Summary reports PAID sales for the last days calendar days including today,
// 30 when days is not positive.
// Days without sales appear with a zero total.
func (s *SaleService) Summary(ctx context.Context, businessID uuid.UUID, days int) (*SalesSummary, error) {
	if days < 1 {
		days = defaultSummaryDays
	}
	if days > maxSummaryDays {
		days = maxSummaryDays
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.sales.DailyTotals(ctx, businessID, since)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]repository.DailyTotal, len(rows))
	for _, r := range rows {
		byDate[r.Day.Format(time.DateOnly)] = r
	}

	summary := &SalesSummary{
		Days:  days,
		Total: decimal.Zero,
		ByDay: make([]repository.DailyTotal, 0, days),
	}
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		row, ok := byDate[d.Format(time.DateOnly)]
		if !ok {
			row = repository.DailyTotal{Total: decimal.Zero}
		}
		row.Day = d
		summary.ByDay = append(summary.ByDay, row)
		summary.Total = summary.Total.Add(row.Total)
		summary.Count += row.Count
	}
	summary.DailyAverage = summary.Total.Div(decimal.NewFromInt(int64(days))).Round(2)

	return summary, nil
}
