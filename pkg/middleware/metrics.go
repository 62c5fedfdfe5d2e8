package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/common"
	infraPrometheus "github.com/rentora/gatekeeper/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		statusCode := c.Response().StatusCode()
		infraPrometheus.GatewayRequestTotal.WithLabelValues(
			c.Method(),
			statusClass(statusCode),
		).Inc()

		m.logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     statusCode,
			"latency_ms": time.Since(startTime).Milliseconds(),
			"request_id": c.Locals(common.RequestIDContextKey),
		}).Debug("request completed")

		return err
	}
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
