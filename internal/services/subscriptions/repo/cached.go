package repo

import (
	"context"
	"errors"
	"time"

	"newsletter/internal/platform/logger"
	"newsletter/internal/services/subscriptions/domain"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "newsletter:token:"

// CachedTokens fronts a TokenStore with redis
// tokens never change once written so entries cannot go stale, ttl only bounds memory
// redis failures are logged and fall through to the backing store
type CachedTokens struct {
	next   domain.TokenStore
	rdb    redis.Cmdable
	ttl    time.Duration
	counts *prometheus.CounterVec
}

// NewCachedTokens wraps next, counts may be nil
func NewCachedTokens(next domain.TokenStore, rdb redis.Cmdable, ttl time.Duration, counts *prometheus.CounterVec) *CachedTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedTokens{next: next, rdb: rdb, ttl: ttl, counts: counts}
}

func tokenKey(token string) string { return tokenKeyPrefix + token }

// Store writes through to the backing store, then primes the cache
func (c *CachedTokens) Store(ctx context.Context, token string, subscriberID uuid.UUID) error {
	if err := c.next.Store(ctx, token, subscriberID); err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, tokenKey(token), subscriberID.String(), c.ttl).Err(); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("token cache prime failed")
	}
	return nil
}

// Lookup reads redis first and fills it from the backing store on a miss
// unknown tokens are not cached
func (c *CachedTokens) Lookup(ctx context.Context, token string) (uuid.UUID, bool, error) {
	raw, err := c.rdb.Get(ctx, tokenKey(token)).Result()
	switch {
	case err == nil:
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			c.count("hit")
			return id, true, nil
		}
		c.count("error")
		logger.C(ctx).Warn().Str("value", raw).Msg("token cache holds a malformed id")
	case errors.Is(err, redis.Nil):
		c.count("miss")
	default:
		c.count("error")
		logger.C(ctx).Warn().Err(err).Msg("token cache read failed")
	}

	id, found, err := c.next.Lookup(ctx, token)
	if err != nil || !found {
		return id, found, err
	}
	if err := c.rdb.Set(ctx, tokenKey(token), id.String(), c.ttl).Err(); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("token cache fill failed")
	}
	return id, true, nil
}

func (c *CachedTokens) count(result string) {
	if c.counts != nil {
		c.counts.WithLabelValues(result).Inc()
	}
}
