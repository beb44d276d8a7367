package service

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/domain/cart"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const sessionLockStripes = 64

// CartService applies cart edits to the session cart held in the cart store.
// Edits to the same session are serialised within this process.
type CartService struct {
	store   repository.CartStore
	catalog repository.CatalogLookup
	locks   [sessionLockStripes]sync.Mutex
}

// NewCartService creates a new cart service
func NewCartService(store repository.CartStore, catalog repository.CatalogLookup) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
	}
}

// GetCart returns the session's cart, empty if it has none
func (s *CartService) GetCart(ctx context.Context, businessID uuid.UUID, sessionID string) (*cart.Cart, error) {
	return s.store.Load(ctx, businessID, sessionID)
}

// AddItem prices the product from the catalog and adds it to the cart
func (s *CartService) AddItem(ctx context.Context, businessID uuid.UUID, sessionID string, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, apperror.ErrInvalidQuantity
	}
	price, err := s.catalog.GetUnitPrice(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, businessID, sessionID, func(c *cart.Cart) error {
		_, err := c.AddItem(productID.String(), quantity, price)
		return err
	})
}

// RemoveItem drops a product from the cart
func (s *CartService) RemoveItem(ctx context.Context, businessID uuid.UUID, sessionID string, productID uuid.UUID) (*cart.Cart, error) {
	return s.mutate(ctx, businessID, sessionID, func(c *cart.Cart) error {
		c.RemoveItem(productID.String())
		return nil
	})
}

// SetQuantity replaces a line's quantity; zero removes the line
func (s *CartService) SetQuantity(ctx context.Context, businessID uuid.UUID, sessionID string, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, businessID, sessionID, func(c *cart.Cart) error {
		_, err := c.SetQuantity(productID.String(), quantity)
		return err
	})
}

// SetDiscount sets the cart-wide discount
func (s *CartService) SetDiscount(ctx context.Context, businessID uuid.UUID, sessionID string, amount decimal.Decimal) (*cart.Cart, error) {
	return s.mutate(ctx, businessID, sessionID, func(c *cart.Cart) error {
		_, err := c.SetDiscount(amount)
		return err
	})
}

// Clear empties the session's cart
func (s *CartService) Clear(ctx context.Context, businessID uuid.UUID, sessionID string) error {
	mu := s.lockFor(businessID, sessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.store.Delete(ctx, businessID, sessionID)
}

// Consume hands the session's cart to fn and deletes the cart only if fn succeeds.
// Once fn has succeeded its effects are committed, so a failed delete is logged
// and not returned.
func (s *CartService) Consume(ctx context.Context, businessID uuid.UUID, sessionID string, fn func(c *cart.Cart) error) error {
	mu := s.lockFor(businessID, sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.store.Load(ctx, businessID, sessionID)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, businessID, sessionID); err != nil {
		log.Warn().
			Err(err).
			Str("business_id", businessID.String()).
			Str("session_id", sessionID).
			Msg("cart not cleared after checkout")
	}
	return nil
}

// mutate loads, edits and stores the cart under the session lock.
// A failed edit is never written back.
func (s *CartService) mutate(ctx context.Context, businessID uuid.UUID, sessionID string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	mu := s.lockFor(businessID, sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.store.Load(ctx, businessID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, businessID, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) lockFor(businessID uuid.UUID, sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(businessID[:])
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}
