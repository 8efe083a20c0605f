package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

var (
	_ contracts.CustomerLookup    = (*CachedCustomers)(nil)
	_ contracts.CustomerDirectory = (*CachedCustomers)(nil)
)

const customerKeyPrefix = "subscriptions:customer:"

// CachedCustomers fronts a CustomerDirectory with Redis. Only found customers
// are cached, so a customer created after a miss is seen immediately. Cache
// failures degrade to the underlying directory.
type CachedCustomers struct {
	next   contracts.CustomerDirectory
	cache  redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCustomers creates a redis-backed customer cache
func NewCachedCustomers(next contracts.CustomerDirectory, cache redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedCustomers {
	return &CachedCustomers{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Exists reports whether the customer is known
func (c *CachedCustomers) Exists(ctx context.Context, customerID string) (bool, error) {
	_, err := c.FindByID(ctx, customerID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByID returns the cached customer or loads and caches it.
func (c *CachedCustomers) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	key := customerKeyPrefix + customerID

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var customer domain.Customer
		if err := json.Unmarshal(raw, &customer); err == nil {
			return &customer, nil
		}
		c.logger.Warn("discarding corrupt customer cache entry", zap.String("customer_id", customerID))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("customer cache read failed", zap.String("customer_id", customerID), zap.Error(err))
	}

	customer, err := c.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(customer); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("customer cache write failed", zap.String("customer_id", customerID), zap.Error(err))
		}
	}
	return customer, nil
}
