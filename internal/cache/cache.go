// Package cache keeps recent scrape results in Redis so closely spaced
// passes can skip sites that were pulled moments ago. With no Redis
// configured the aggregator simply runs uncached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
)

// DefaultTTL is how long a site's leads stay reusable. Long enough to
// absorb a restart loop, short enough that a daily schedule never sees
// stale boards.
const DefaultTTL = 30 * time.Minute

// Redis is a scrape-result cache backed by a Redis instance.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewFromURL connects to Redis at the given URL (redis://host:port)
// and verifies the connection before returning.
func NewFromURL(redisURL string, ttl time.Duration, log logger.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, log: log}, nil
}

// GetLeads returns the cached leads for a site key. Any failure, from a
// plain miss to Redis being down, reads as a miss.
func (c *Redis) GetLeads(ctx context.Context, key string) ([]scrape.Lead, bool) {
	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var leads []scrape.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, false
	}
	return leads, true
}

// PutLeads stores a site's leads under its key with the configured TTL.
func (c *Redis) PutLeads(ctx context.Context, key string, leads []scrape.Lead) {
	data, err := json.Marshal(leads)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		c.log.Warnf("[cache] write failed: %v", err)
	}
}

func (c *Redis) Close() error { return c.client.Close() }

// redisKey hashes the site key so criteria strings with spaces or
// unicode never leak into the keyspace verbatim.
func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("jobfeed:scrape:%x", sum[:8])
}
