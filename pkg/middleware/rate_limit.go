package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/common"
	infraPrometheus "github.com/rentora/gatekeeper/pkg/infra/prometheus"
	"github.com/rentora/gatekeeper/pkg/ratelimit"
)

type rateLimitMiddleware struct {
	logger   *logrus.Logger
	limiter  *ratelimit.Limiter
	policies map[string]ratelimit.Policy
}

func NewRateLimitMiddleware(
	logger *logrus.Logger,
	limiter *ratelimit.Limiter,
	policies map[string]ratelimit.Policy,
) Middleware {
	return &rateLimitMiddleware{
		logger:   logger,
		limiter:  limiter,
		policies: policies,
	}
}

// Middleware classifies the request path, charges the caller's window and
// rejects with 429 once the policy's budget is spent. Quota headers are
// attached on both admission and denial.
func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		policyName := ratelimit.Classify(c.Path())
		policy, ok := m.policies[policyName]
		if !ok {
			policy, ok = m.policies[ratelimit.PolicyAPI]
			if !ok {
				// no policy table at all, nothing to enforce
				return c.Next()
			}
		}

		identifier := ratelimit.ClientIP(c.GetReqHeaders())
		result := m.limiter.Admit(c.Context(), identifier, policy)

		c.Set(common.RateLimitLimitHeader, strconv.Itoa(result.Limit))
		c.Set(common.RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
		c.Set(common.RateLimitResetHeader, strconv.FormatInt(result.Reset, 10))

		c.Locals(common.PolicyContextKey, policyName)
		c.Locals(common.ClientIPContextKey, identifier)

		if !result.Success {
			infraPrometheus.RateLimitDecisionTotal.WithLabelValues(policyName, "denied").Inc()
			m.logger.WithFields(logrus.Fields{
				"identifier": identifier,
				"policy":     policyName,
				"path":       c.Path(),
			}).Info("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded, retry after the window resets",
			})
		}

		infraPrometheus.RateLimitDecisionTotal.WithLabelValues(policyName, "allowed").Inc()
		return c.Next()
	}
}
