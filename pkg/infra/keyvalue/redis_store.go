package keyvalue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
)

const opTimeout = 2 * time.Second

// RedisStore is the durable, shared backend. Every operation is a network
// round trip executed through a circuit breaker so a dead Redis degrades to
// the in-process fallback instead of stalling callers.
type RedisStore struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
}

func NewRedisStore(client *redis.Client, breaker *gobreaker.CircuitBreaker) *RedisStore {
	return &RedisStore{
		client:  client,
		breaker: breaker,
	}
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		value, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// a miss is not a backend failure, keep it away from the breaker
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", ErrKeyNotFound
	}
	value, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("keyvalue: unexpected value type at %q", key)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	return err
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		var keys []string
		var cursor uint64
		for {
			batch, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return nil, fmt.Errorf("error scanning keys: %w", err)
			}
			keys = append(keys, batch...)
			cursor = nextCursor
			if cursor == 0 {
				break
			}
		}
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	keys, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("keyvalue: unexpected scan result type")
	}
	return keys, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return s.client.Incr(ctx, key).Result()
	})
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("keyvalue: unexpected incr result type")
	}
	return count, nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Expire(ctx, key, ttl).Err()
	})
	return err
}

func (s *RedisStore) execute(ctx context.Context, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.breaker.Execute(func() (interface{}, error) {
		return op(ctx)
	})
}
