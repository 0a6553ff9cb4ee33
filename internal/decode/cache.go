package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"decodedTx/internal/model"
)

// ErrCacheMiss is returned by caches when a key is absent or expired.
var ErrCacheMiss = errors.New("decode: cache miss")

// Cache stores serialized decode results.
type Cache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key string, value string, expiration time.Duration) error
}

// MemoryCache is an in-process cache with per-entry expiry.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]cacheItem
}

type cacheItem struct {
	value     string
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]cacheItem)}
}

func (c *MemoryCache) GetString(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return "", ErrCacheMiss
	}
	return item.value, nil
}

// SetString stores value; a non-positive expiration keeps it until the process exits.
func (c *MemoryCache) SetString(_ context.Context, key string, value string, expiration time.Duration) error {
	item := cacheItem{value: value}
	if expiration > 0 {
		item.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// RedisClient is the subset of the go-redis client used by RedisAdapter.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisAdapter exposes a Redis client as a Cache.
type RedisAdapter struct {
	client RedisClient
}

func NewRedisAdapter(client RedisClient) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (c *RedisAdapter) GetString(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (c *RedisAdapter) SetString(ctx context.Context, key string, value string, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *RedisAdapter) Close() error {
	return c.client.Close()
}

// CachedDecoder serves successful decode results from a cache before calling the wrapped fetcher.
// Failed fetches are never cached.
type CachedDecoder struct {
	inner   Fetcher
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *Metrics
}

func NewCachedDecoder(inner Fetcher, cache Cache, ttl time.Duration, logger *zap.Logger, metrics *Metrics) *CachedDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDecoder{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// CacheKey returns the cache key of a decode request.
func CacheKey(network, txHash string) string {
	return fmt.Sprintf("decodedtx:%s:%s", network, txHash)
}

func (d *CachedDecoder) Fetch(ctx context.Context, network, txHash string) (model.DecodeResult, error) {
	key := CacheKey(network, txHash)

	if d.cache != nil {
		cached, err := d.cache.GetString(ctx, key)
		switch {
		case err == nil:
			var result model.DecodeResult
			jsonErr := json.Unmarshal([]byte(cached), &result)
			if jsonErr == nil {
				d.metrics.observe(OutcomeCacheHit)
				if result == nil {
					result = model.DecodeResult{}
				}
				return result, nil
			}
			d.logger.Warn("cached decode result unreadable", zap.String("key", key), zap.Error(jsonErr))
		case !errors.Is(err, ErrCacheMiss):
			d.logger.Warn("decode cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	result, err := d.inner.Fetch(ctx, network, txHash)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return result, nil
		}
		if err := d.cache.SetString(ctx, key, string(data), d.ttl); err != nil {
			d.logger.Warn("decode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return result, nil
}

// Decode fetches through the cache and normalizes failures to an empty result.
func (d *CachedDecoder) Decode(ctx context.Context, network, txHash string) model.DecodeResult {
	result, err := d.Fetch(ctx, network, txHash)
	return normalize(d.logger, network, txHash, result, err)
}
