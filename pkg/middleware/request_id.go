package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rentora/gatekeeper/pkg/common"
)

type requestIDMiddleware struct {
	uuidProvider func() uuid.UUID
}

func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{uuidProvider: uuid.New}
}

// Middleware tags every request with an id, reusing the caller's when one is
// already present, and echoes it on the response.
func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(common.RequestIDHeader)
		if requestID == "" {
			requestID = m.uuidProvider().String()
		}

		c.Locals(common.RequestIDContextKey, requestID)
		c.Set(common.RequestIDHeader, requestID)

		return c.Next()
	}
}
