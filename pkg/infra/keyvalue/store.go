package keyvalue

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when a key is absent or expired.
var ErrKeyNotFound = errors.New("keyvalue: key not found")

// Store is the capability both backends implement. The cache façade and the
// rate limiter depend only on this interface and never branch on
// configuration themselves.
//
// Keys accepts a prefix-style pattern with a single trailing wildcard
// ("foo:*"); everything before the wildcard is matched literally.
//
//go:generate mockery --name=Store --dir=. --output=./mocks --filename=store_mock.go --case=underscore --with-expecter
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Name() string
}
