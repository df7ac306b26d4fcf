package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResolver is a read-through redis cache in front of another Resolver.
// Addresses rarely move, so hits are served without touching the provider.
// Redis being down only costs the cache; lookups still go through.
type CachedResolver struct {
	next Resolver
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &CachedResolver{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log,
	}
}

func cacheKey(address string) string {
	return "geo:" + strings.ToLower(strings.TrimSpace(address))
}

func (c *CachedResolver) Resolve(ctx context.Context, address string) (Coordinates, error) {
	key := cacheKey(address)

	raw, err := c.rdb.Get(ctx, key).Result()

	if err == nil {
		var coords Coordinates

		if json.Unmarshal([]byte(raw), &coords) == nil {
			return coords, nil
		}
		// unreadable entry, fall through and overwrite it
	} else if err != redis.Nil {
		c.log.Debug("geocode cache read failed", "err", err)
	}

	coords, err := c.next.Resolve(ctx, address)

	if err != nil {
		return Coordinates{}, err
	}

	buf, err := json.Marshal(coords)

	if err == nil {
		err = c.rdb.Set(ctx, key, buf, c.ttl).Err()

		if err != nil {
			c.log.Debug("geocode cache write failed", "err", err)
		}
	}

	return coords, nil
}
