package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogLookup resolves the current selling price of a product
type CatalogLookup interface {
	// GetUnitPrice returns apperror.ErrNotFound (by errors.Is) for unknown or inactive products
	GetUnitPrice(ctx context.Context, businessID, productID uuid.UUID) (decimal.Decimal, error)
}

// ProductNames resolves display names for printed tickets
type ProductNames interface {
	// GetNames returns the names it knows, including inactive products.
	// Unknown ids are absent from the map.
	GetNames(ctx context.Context, businessID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Catalog is the product catalog as seen by the point of sale
type Catalog interface {
	CatalogLookup
	ProductNames
}
