package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
	"github.com/rentora/gatekeeper/pkg/ratelimit"
)

func newMemoryLimiter(now *time.Time) *ratelimit.Limiter {
	timeProvider := func() time.Time { return *now }
	store := keyvalue.NewMemoryStore(keyvalue.WithTimeProvider(timeProvider))
	logger, _ := test.NewNullLogger()
	return ratelimit.NewLimiter(
		keyvalue.StaticResolver{Backend: store},
		logger,
		ratelimit.WithTimeProvider(timeProvider),
	)
}

func TestLimiter_AdmissionSequence(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)
	policy := ratelimit.Policy{Limit: 5, WindowSeconds: 60}

	for want := 4; want >= 0; want-- {
		result := limiter.Admit(context.Background(), "1.2.3.4", policy)
		assert.True(t, result.Success)
		assert.Equal(t, want, result.Remaining)
		assert.Equal(t, 5, result.Limit)
	}

	result := limiter.Admit(context.Background(), "1.2.3.4", policy)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Remaining)
}

func TestLimiter_DeniedRequestStillConsumesWindow(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)
	policy := ratelimit.Policy{Limit: 1, WindowSeconds: 60}

	assert.True(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)
	assert.False(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)
	// a third attempt inside the window stays denied, no free probing
	assert.False(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)
}

func TestLimiter_WindowReset(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)
	policy := ratelimit.Policy{Limit: 2, WindowSeconds: 60}

	limiter.Admit(context.Background(), "1.2.3.4", policy)
	limiter.Admit(context.Background(), "1.2.3.4", policy)
	require.False(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)

	now = now.Add(61 * time.Second)

	result := limiter.Admit(context.Background(), "1.2.3.4", policy)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Remaining)
}

func TestLimiter_ResetIsWindowEnd(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)
	policy := ratelimit.Policy{Limit: 5, WindowSeconds: 60}

	windowStart := now.Unix() / 60 * 60
	result := limiter.Admit(context.Background(), "1.2.3.4", policy)
	assert.Equal(t, windowStart+60, result.Reset)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)
	policy := ratelimit.Policy{Limit: 1, WindowSeconds: 60}

	assert.True(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)
	assert.False(t, limiter.Admit(context.Background(), "1.2.3.4", policy).Success)
	assert.True(t, limiter.Admit(context.Background(), "5.6.7.8", policy).Success)
}

func TestLimiter_ZeroValuePolicyAdmitsWithoutPanic(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	limiter := newMemoryLimiter(&now)

	// a policy that skipped DecodePolicies validation
	result := limiter.Admit(context.Background(), "1.2.3.4", ratelimit.Policy{})
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Limit)
}

func TestLimiter_DurableBackendCountsAtomically(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := keyvalue.NewRedisStore(client, gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test"}))
	logger, _ := test.NewNullLogger()

	now := time.Unix(1_000_000, 0)
	limiter := ratelimit.NewLimiter(
		keyvalue.StaticResolver{Backend: store},
		logger,
		ratelimit.WithTimeProvider(func() time.Time { return now }),
	)
	policy := ratelimit.Policy{Limit: 5, WindowSeconds: 60, KeyPrefix: "ratelimit:api"}

	windowStart := now.Unix() / 60 * 60
	key := fmt.Sprintf("ratelimit:api:1.2.3.4:%d", windowStart)
	mock.ExpectIncr(key).SetVal(6)
	mock.ExpectExpire(key, time.Minute).SetVal(true)

	result := limiter.Admit(context.Background(), "1.2.3.4", policy)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_BackendErrorAdmits(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := keyvalue.NewRedisStore(client, gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test"}))
	logger, hook := test.NewNullLogger()

	now := time.Unix(1_000_000, 0)
	limiter := ratelimit.NewLimiter(
		keyvalue.StaticResolver{Backend: store},
		logger,
		ratelimit.WithTimeProvider(func() time.Time { return now }),
	)
	policy := ratelimit.Policy{Limit: 5, WindowSeconds: 60}

	windowStart := now.Unix() / 60 * 60
	key := fmt.Sprintf("ratelimit:1.2.3.4:%d", windowStart)
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	result := limiter.Admit(context.Background(), "1.2.3.4", policy)
	assert.True(t, result.Success)
	assert.NotEmpty(t, hook.Entries)
}
