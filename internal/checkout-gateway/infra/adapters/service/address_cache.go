package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/cache"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/metrics"
)

var _ ports.AddressLookup = (*CachedAddressLookup)(nil)

// CachedAddressLookup serves repeated searches and detail fetches from the
// cache. Cache errors fall through to the wrapped lookup.
type CachedAddressLookup struct {
	next  ports.AddressLookup
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedAddressLookup(next ports.AddressLookup, c cache.Cache, ttl time.Duration) *CachedAddressLookup {
	return &CachedAddressLookup{next: next, cache: c, ttl: ttl}
}

func (l *CachedAddressLookup) Search(ctx context.Context, query string) ([]entity.AddressSuggestion, error) {
	key := l.cache.GenerateKey("address-search", strings.ToLower(strings.TrimSpace(query)))

	var cached []entity.AddressSuggestion
	err := l.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.AddressLookups.WithLabelValues("search", "cache").Inc()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "address cache read failed", "key", key, "error", err)
	}

	results, err := l.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, results, l.ttl); err != nil {
		slog.WarnContext(ctx, "address cache write failed", "key", key, "error", err)
	}
	return results, nil
}

func (l *CachedAddressLookup) Details(ctx context.Context, id string) (*entity.AddressDetails, error) {
	key := l.cache.GenerateKey("address-details", id)

	var cached entity.AddressDetails
	err := l.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.AddressLookups.WithLabelValues("details", "cache").Inc()
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "address cache read failed", "key", key, "error", err)
	}

	details, err := l.next.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, details, l.ttl); err != nil {
		slog.WarnContext(ctx, "address cache write failed", "key", key, "error", err)
	}
	return details, nil
}
