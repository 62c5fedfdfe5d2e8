package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
)

// Limiter counts requests in fixed, non-overlapping windows. Counters are
// keyed by `{prefix}:{identifier}:{windowStart}` so a new window always
// starts a fresh counter regardless of backend TTL timing; the entry's TTL
// equals the window length and only cleans up behind it.
type Limiter struct {
	resolver keyvalue.Resolver
	logger   *logrus.Logger
	now      func() time.Time
}

type Option func(*Limiter)

// WithTimeProvider overrides the clock, used by tests to cross window
// boundaries without sleeping.
func WithTimeProvider(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(resolver keyvalue.Resolver, logger *logrus.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records the request against the identifier's current window and
// reports whether it is within the policy's budget. The increment is applied
// even when it pushes the count over the limit: a denied caller keeps
// consuming its window instead of getting free probing attempts.
//
// A backend failure admits the request with a warning log; the counters are
// advisory and an unreachable store must not take the API down with it.
func (l *Limiter) Admit(ctx context.Context, identifier string, policy Policy) Result {
	windowSeconds := int64(policy.WindowSeconds)
	if windowSeconds <= 0 || policy.Limit <= 0 {
		// DecodePolicies rejects these at startup; a hand-built policy that
		// skipped it must not divide by zero here
		l.logger.WithFields(logrus.Fields{
			"identifier": identifier,
			"limit":      policy.Limit,
			"window":     policy.WindowSeconds,
		}).Warn("unusable rate limit policy, admitting request")
		return Result{Success: true, Limit: policy.Limit}
	}
	windowStart := l.now().Unix() / windowSeconds * windowSeconds
	reset := windowStart + windowSeconds

	key := fmt.Sprintf("%s:%s:%d", policy.prefix(), identifier, windowStart)

	store := l.resolver.Store()
	count, err := store.Incr(ctx, key)
	if err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"identifier": identifier,
			"backend":    store.Name(),
		}).Warn("rate limit increment failed, admitting request")
		return Result{
			Success:   true,
			Limit:     policy.Limit,
			Remaining: maxInt(0, policy.Limit-1),
			Reset:     reset,
		}
	}

	// refresh on every increment; the window index in the key keeps a late
	// refresh from stretching a previous window's counter
	if err := store.Expire(ctx, key, policy.Window()); err != nil {
		l.logger.WithError(err).WithField("key", key).Debug("rate limit expiry refresh failed")
	}

	return Result{
		Success:   count <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: maxInt(0, policy.Limit-int(count)),
		Reset:     reset,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
