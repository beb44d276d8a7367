package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/pos-api/internal/domain/cart"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
)

const cartKeyPrefix = "pos:cart"

type cartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore stores cart snapshots as JSON strings that expire after ttl without writes
func NewCartStore(client *redis.Client, ttl time.Duration) domainRepo.CartStore {
	return &cartStore{client: client, ttl: ttl}
}

// CartKey is the Redis key of a session's cart
func CartKey(businessID uuid.UUID, sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", cartKeyPrefix, businessID, sessionID)
}

func (s *cartStore) Load(ctx context.Context, businessID uuid.UUID, sessionID string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, CartKey(businessID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart.Restore(snap)
}

func (s *cartStore) Save(ctx context.Context, businessID uuid.UUID, sessionID string, c *cart.Cart) error {
	key := CartKey(businessID, sessionID)
	if c.IsEmpty() {
		return s.client.Del(ctx, key).Err()
	}

	raw, err := json.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.client.Set(ctx, key, raw, s.ttl).Err()
}

func (s *cartStore) Delete(ctx context.Context, businessID uuid.UUID, sessionID string) error {
	return s.client.Del(ctx, CartKey(businessID, sessionID)).Err()
}
