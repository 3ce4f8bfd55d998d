package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/cache"
)

const (
	opCart      = "cart"
	opPreserved = "cart-preserved"
	opBuyNow    = "buy-now"
)

// RedisStore keeps session carts, the preserve-cart marker and staged buy-now
// lines in Redis. Every write refreshes the session TTL.
type RedisStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewRedisStore(c cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) Read(ctx context.Context, sessionID string) ([]entity.CartLine, error) {
	var lines []entity.CartLine
	err := s.cache.Get(ctx, s.cache.GenerateKey(opCart, sessionID), &lines)
	if errors.Is(err, cache.ErrCacheMiss) {
		return []entity.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	return lines, nil
}

// Replace overwrites the cart on behalf of the shopper and drops any
// preserve-cart marker left by an earlier buy-now purchase.
func (s *RedisStore) Replace(ctx context.Context, sessionID string, lines []entity.CartLine) error {
	if err := s.Restore(ctx, sessionID, lines); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(opPreserved, sessionID)); err != nil {
		return fmt.Errorf("clear preserve marker: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(opCart, sessionID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Restore(ctx context.Context, sessionID string, lines []entity.CartLine) error {
	if lines == nil {
		lines = []entity.CartLine{}
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey(opCart, sessionID), lines, s.ttl); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkPreserved(ctx context.Context, sessionID string) error {
	if err := s.cache.Set(ctx, s.cache.GenerateKey(opPreserved, sessionID), true, s.ttl); err != nil {
		return fmt.Errorf("mark cart preserved: %w", err)
	}
	return nil
}

// Preserved reports whether the cart was restored after a buy-now purchase.
func (s *RedisStore) Preserved(ctx context.Context, sessionID string) (bool, error) {
	var preserved bool
	err := s.cache.Get(ctx, s.cache.GenerateKey(opPreserved, sessionID), &preserved)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read preserve marker: %w", err)
	}
	return preserved, nil
}

func (s *RedisStore) Stage(ctx context.Context, sessionID string, line entity.CartLine) error {
	if err := s.cache.Set(ctx, s.cache.GenerateKey(opBuyNow, sessionID), line, s.ttl); err != nil {
		return fmt.Errorf("stage buy-now: %w", err)
	}
	return nil
}

// Staged returns nil when the session has no buy-now line.
func (s *RedisStore) Staged(ctx context.Context, sessionID string) (*entity.CartLine, error) {
	var line entity.CartLine
	err := s.cache.Get(ctx, s.cache.GenerateKey(opBuyNow, sessionID), &line)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read buy-now: %w", err)
	}
	return &line, nil
}

func (s *RedisStore) Unstage(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(opBuyNow, sessionID)); err != nil {
		return fmt.Errorf("unstage buy-now: %w", err)
	}
	return nil
}
