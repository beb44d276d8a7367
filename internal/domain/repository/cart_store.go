package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/cart"
)

// CartStore keeps the cart of each checkout session between requests
type CartStore interface {
	// Load returns an empty cart when the session has none
	Load(ctx context.Context, businessID uuid.UUID, sessionID string) (*cart.Cart, error)
	Save(ctx context.Context, businessID uuid.UUID, sessionID string, c *cart.Cart) error
	Delete(ctx context.Context, businessID uuid.UUID, sessionID string) error
}
