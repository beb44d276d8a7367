package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog backed by the products table
func NewCatalogRepository(db *gorm.DB) domainRepo.Catalog {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetUnitPrice(ctx context.Context, businessID, productID uuid.UUID) (decimal.Decimal, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Select("id", "unit_price").
		Where("id = ? AND business_id = ? AND active = ?", productID, businessID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, apperror.NewNotFoundError("Product")
	}
	if err != nil {
		return decimal.Zero, err
	}
	return product.UnitPrice, nil
}

func (r *catalogRepository) GetNames(ctx context.Context, businessID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(productIDs))
	if len(productIDs) == 0 {
		return names, nil
	}

	var products []entity.Product
	err := r.db.WithContext(ctx).Unscoped().
		Select("id", "name").
		Where("business_id = ? AND id IN ?", businessID, productIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}
