package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// BusinessIDKey is the context key for the business the request acts on
const BusinessIDKey ctxKey = "business_id"

// BusinessScope returns a GORM scope that filters by business.
// It should be applied to all reads of business-owned rows.
func BusinessScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		businessID, ok := ctx.Value(BusinessIDKey).(uuid.UUID)
		if !ok {
			// Fail-safe: return no results if business context missing
			return db.Where("1 = 0")
		}
		return db.Where("business_id = ?", businessID)
	}
}

// WithBusiness adds business ID to context
func WithBusiness(ctx context.Context, businessID uuid.UUID) context.Context {
	return context.WithValue(ctx, BusinessIDKey, businessID)
}
