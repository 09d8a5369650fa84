package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "fulfillment:registry:v1:"

// KV is the subset of *redis.Client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached serves list reads from Redis for ttl and falls back to the wrapped
// Source on a miss or any Redis error. Pickup location lookups and product
// rules are keyed per request and pass straight through.
type Cached struct {
	next   Source
	kv     KV
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Source = (*Cached)(nil)

func NewCached(next Source, kv KV, ttl time.Duration, logger zerolog.Logger) *Cached {
	return &Cached{next: next, kv: kv, ttl: ttl, logger: logger.With().Str("component", "registry_cache").Logger()}
}

func (c *Cached) ListActiveDeliverySchedules(ctx context.Context) ([]domain.DeliverySchedule, error) {
	return cachedList(ctx, c, "schedules", c.next.ListActiveDeliverySchedules)
}

func (c *Cached) ListActivePickupLocations(ctx context.Context) ([]domain.PickupLocation, error) {
	return cachedList(ctx, c, "pickup_locations", c.next.ListActivePickupLocations)
}

func (c *Cached) GetPickupLocation(ctx context.Context, id string) (*domain.PickupLocation, error) {
	return c.next.GetPickupLocation(ctx, id)
}

func (c *Cached) ListClosures(ctx context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error) {
	key := fmt.Sprintf("closures:%s:%s", affects, from)
	return cachedList(ctx, c, key, func(ctx context.Context) ([]domain.CalendarClosure, error) {
		return c.next.ListClosures(ctx, from, affects)
	})
}

func (c *Cached) GetProductDeliveryRules(ctx context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error) {
	return c.next.GetProductDeliveryRules(ctx, productIDs)
}

func (c *Cached) ListActiveDeliveryZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	return cachedList(ctx, c, "zones", c.next.ListActiveDeliveryZones)
}

func (c *Cached) ListActiveFeeRules(ctx context.Context) ([]domain.FeeRule, error) {
	return cachedList(ctx, c, "fee_rules", c.next.ListActiveFeeRules)
}

func cachedList[T any](ctx context.Context, c *Cached, name string, load func(context.Context) ([]T, error)) ([]T, error) {
	key := keyPrefix + name

	raw, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		decodeErr := json.Unmarshal(raw, &out)
		if decodeErr == nil {
			return out, nil
		}
		c.logger.Warn().Err(decodeErr).Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return out, nil
	}
	if err := c.kv.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return out, nil
}
