package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
)

// CachedPartyDirectory caches email and recipient code lookups. Orders are
// always read through because their status changes.
type CachedPartyDirectory struct {
	inner  PartyDirectory
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedPartyDirectory wraps inner with cache.
func NewCachedPartyDirectory(inner PartyDirectory, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedPartyDirectory {
	if ttl <= 0 {
		ttl = DefaultPartyCacheTTL
	}
	return &CachedPartyDirectory{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// OrderByID reads the order from the underlying directory.
func (d *CachedPartyDirectory) OrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return d.inner.OrderByID(ctx, orderID)
}

// CustomerByEmail resolves a customer id, consulting the cache first.
func (d *CachedPartyDirectory) CustomerByEmail(ctx context.Context, email string) (string, error) {
	return d.lookup(ctx, "party:customer:"+email, func() (string, error) {
		return d.inner.CustomerByEmail(ctx, email)
	})
}

// BusinessByRecipientCode resolves a business id, consulting the cache first.
func (d *CachedPartyDirectory) BusinessByRecipientCode(ctx context.Context, recipientCode string) (string, error) {
	return d.lookup(ctx, "party:business:"+recipientCode, func() (string, error) {
		return d.inner.BusinessByRecipientCode(ctx, recipientCode)
	})
}

func (d *CachedPartyDirectory) lookup(ctx context.Context, key string, load func() (string, error)) (string, error) {
	cached, err := d.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Fall through to the store on cache errors.
		d.logger.Warn().Err(err).Str("key", key).Msg("party cache read failed")
	}

	id, err := load()
	if err != nil {
		return "", err
	}

	if err := d.cache.Set(ctx, key, id, d.ttl); err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("party cache write failed")
	}

	return id, nil
}
