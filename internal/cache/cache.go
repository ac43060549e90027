// Package cache stores ranked search results keyed by index generation, so a
// rebuilt index never serves results computed against its predecessor.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/movie-search/config"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/services"
)

const keyPrefix = "moviesearch:"

// ErrMiss is returned by a Store that holds no value for a key.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value backend with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore is a Store backed by go-redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis client and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// QueryCache caches search results in a Store. A QueryCache without a store
// computes every request, but still coalesces identical concurrent ones.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	logger  *logrus.Entry
	metrics *metrics.Metrics
}

// New creates a QueryCache. store may be nil to disable caching.
func New(store Store, ttl time.Duration, logger *logrus.Entry, m *metrics.Metrics) *QueryCache {
	if logger == nil {
		logger = logrus.WithField("component", "query-cache")
	}
	return &QueryCache{store: store, ttl: ttl, logger: logger, metrics: m}
}

// NewNop returns a QueryCache that never stores anything.
func NewNop() *QueryCache {
	return New(nil, 0, nil, nil)
}

// Enabled reports whether results are actually stored.
func (c *QueryCache) Enabled() bool {
	return c.store != nil
}

// Key identifies a search: the index generation plus a digest of the
// normalized query tokens and the scoring parameters.
func Key(generation string, tokens []string, limit int, k1, b float64) string {
	var encoded strings.Builder
	for _, token := range tokens {
		encoded.WriteString(strconv.Itoa(len(token)))
		encoded.WriteByte(':')
		encoded.WriteString(token)
	}
	raw := strings.Join([]string{
		encoded.String(),
		strconv.Itoa(limit),
		strconv.FormatFloat(k1, 'g', -1, 64),
		strconv.FormatFloat(b, 'g', -1, 64),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, generation, sum)
}

func (c *QueryCache) get(ctx context.Context, key string) (services.SearchResult, bool) {
	if c.store == nil {
		return services.SearchResult{}, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		}
		return services.SearchResult{}, false
	}
	var result services.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache unmarshal failed")
		return services.SearchResult{}, false
	}
	return result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result services.SearchResult) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// GetOrCompute returns the cached result for key or computes, stores and
// returns it. Concurrent misses for the same key run compute once. The
// boolean reports whether the result came from the store. Store failures
// degrade to computing; compute errors are never cached.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, compute func() (services.SearchResult, error)) (services.SearchResult, bool, error) {
	if result, ok := c.get(ctx, key); ok {
		c.metrics.CacheHit()
		return result, true, nil
	}
	if c.store != nil {
		c.metrics.CacheMiss()
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return services.SearchResult{}, false, err
	}
	return val.(services.SearchResult), false, nil
}
