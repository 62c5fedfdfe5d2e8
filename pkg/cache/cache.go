package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rentora/gatekeeper/pkg/common"
	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
	infraPrometheus "github.com/rentora/gatekeeper/pkg/infra/prometheus"
)

const DefaultTTL = common.DefaultCacheTTL

// Config tunes a single cache write.
type Config struct {
	TTL       time.Duration
	KeyPrefix string
}

// Cache is a read-through cache over whichever backend the resolver hands
// out. Values are stored as JSON text; a payload that fails to decode is
// treated as a miss, never surfaced as an error.
type Cache struct {
	resolver keyvalue.Resolver
	logger   *logrus.Logger
	group    singleflight.Group
}

func New(resolver keyvalue.Resolver, logger *logrus.Logger) *Cache {
	return &Cache{
		resolver: resolver,
		logger:   logger,
	}
}

// Get returns the raw stored payload, reporting a miss for absent keys,
// expired keys, and backend errors alike.
func (c *Cache) Get(ctx context.Context, key, keyPrefix string) (string, bool) {
	store := c.resolver.Store()
	value, err := store.Get(ctx, namespacedKey(keyPrefix, key))
	if err != nil {
		if !errors.Is(err, keyvalue.ErrKeyNotFound) {
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed, treating as miss")
			infraPrometheus.CacheOpTotal.WithLabelValues("get", store.Name(), "error").Inc()
			return "", false
		}
		infraPrometheus.CacheOpTotal.WithLabelValues("get", store.Name(), "miss").Inc()
		return "", false
	}
	infraPrometheus.CacheOpTotal.WithLabelValues("get", store.Name(), "hit").Inc()
	return value, true
}

// Set stores the payload unconditionally, overwriting any previous value.
func (c *Cache) Set(ctx context.Context, key, value string, cfg Config) error {
	store := c.resolver.Store()
	err := store.Set(ctx, namespacedKey(cfg.KeyPrefix, key), value, ttlOrDefault(cfg.TTL))
	if err != nil {
		infraPrometheus.CacheOpTotal.WithLabelValues("set", store.Name(), "error").Inc()
		return err
	}
	infraPrometheus.CacheOpTotal.WithLabelValues("set", store.Name(), "ok").Inc()
	return nil
}

// Delete removes a single key. Removing an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key, keyPrefix string) error {
	return c.resolver.Store().Delete(ctx, namespacedKey(keyPrefix, key))
}

// DeleteByPattern removes every key matching a prefix-style pattern with a
// single trailing wildcard: "cars:*" strips the wildcard and deletes every
// key under the literal prefix "cars:".
func (c *Cache) DeleteByPattern(ctx context.Context, pattern, keyPrefix string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	return c.deleteByPrefix(ctx, namespacedKey(keyPrefix, prefix))
}

// Clear removes every key under the namespace. Destructive; meant for
// maintenance, not steady-state use.
func (c *Cache) Clear(ctx context.Context, keyPrefix string) error {
	return c.deleteByPrefix(ctx, prefixOrDefault(keyPrefix)+":")
}

func (c *Cache) deleteByPrefix(ctx context.Context, prefix string) error {
	store := c.resolver.Store()
	keys, err := store.Keys(ctx, prefix+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return store.Delete(ctx, keys...)
}

// Get decodes the cached payload into T. Malformed payloads count as misses.
func Get[T any](ctx context.Context, c *Cache, key, keyPrefix string) (T, bool) {
	var value T
	payload, ok := c.Get(ctx, key, keyPrefix)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		c.logger.WithField("key", key).Debug("malformed cache payload, treating as miss")
		var zero T
		return zero, false
	}
	return value, true
}

// GetOrSet returns the cached value for key, or invokes producer on a miss
// and stores its result with the configured TTL. Concurrent misses for the
// same key within this process are coalesced into one producer call; across
// processes the last writer wins. A failed write is logged and the produced
// value is still returned.
func GetOrSet[T any](
	ctx context.Context,
	c *Cache,
	key string,
	producer func(ctx context.Context) (T, error),
	cfg Config,
) (T, error) {
	result, err, _ := c.group.Do(namespacedKey(cfg.KeyPrefix, key), func() (interface{}, error) {
		if cached, ok := Get[T](ctx, c, key, cfg.KeyPrefix); ok {
			return cached, nil
		}

		produced, err := producer(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(produced)
		if err != nil {
			// non-encodable payloads are the caller's problem, but a produced
			// value is still worth returning
			c.logger.WithError(err).WithField("key", key).Warn("cache payload not encodable, skipping store")
			return produced, nil
		}
		if err := c.Set(ctx, key, string(payload), cfg); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache write failed, returning produced value")
		}
		return produced, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		var zero T
		return zero, errors.New("cache: unexpected value type")
	}
	return value, nil
}

func namespacedKey(prefix, key string) string {
	return prefixOrDefault(prefix) + ":" + key
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return common.CacheKeyPrefix
	}
	return prefix
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
