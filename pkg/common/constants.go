package common

import "time"

const (
	// CacheKeyPrefix is the default namespace for cache entries.
	CacheKeyPrefix = "cache"
	// RateLimitKeyPrefix is the default namespace for rate-limit counters.
	RateLimitKeyPrefix = "ratelimit"

	DefaultCacheTTL   = 5 * time.Minute
	LocationsCacheTTL = 10 * time.Minute

	LocationsCacheKey = "locations"

	RequestIDHeader = "X-Request-Id"

	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)
