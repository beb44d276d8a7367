package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CatalogService exposes read-only catalog pricing
type CatalogService struct {
	catalog repository.CatalogLookup
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog repository.CatalogLookup) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// GetUnitPrice returns the price a cart would capture for the product right now
func (s *CatalogService) GetUnitPrice(ctx context.Context, businessID, productID uuid.UUID) (decimal.Decimal, error) {
	return s.catalog.GetUnitPrice(ctx, businessID, productID)
}
