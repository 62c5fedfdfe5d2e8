package ratelimit

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/rentora/gatekeeper/pkg/common"
)

// Policy is the immutable admission configuration for one request class.
type Policy struct {
	Limit         int    `mapstructure:"limit" json:"limit"`
	WindowSeconds int    `mapstructure:"window_seconds" json:"window_seconds"`
	KeyPrefix     string `mapstructure:"key_prefix" json:"key_prefix"`
}

// Window is the policy's fixed window as a duration.
func (p Policy) Window() time.Duration {
	return time.Duration(p.WindowSeconds) * time.Second
}

func (p Policy) prefix() string {
	if p.KeyPrefix == "" {
		return common.RateLimitKeyPrefix
	}
	return p.KeyPrefix
}

// Result is a stateless snapshot of an admission decision; it is returned to
// the caller and never stored.
type Result struct {
	Success   bool  `json:"success"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// DecodePolicies builds the per-class policy table from a decoded
// configuration section and rejects unusable entries.
func DecodePolicies(settings interface{}) (map[string]Policy, error) {
	policies := make(map[string]Policy)
	if err := mapstructure.Decode(settings, &policies); err != nil {
		return nil, fmt.Errorf("invalid rate limit policies: %w", err)
	}
	for name, policy := range policies {
		if policy.Limit <= 0 {
			return nil, fmt.Errorf("rate limit policy %q requires a positive limit", name)
		}
		if policy.WindowSeconds <= 0 {
			return nil, fmt.Errorf("rate limit policy %q requires a positive window", name)
		}
	}
	return policies, nil
}
