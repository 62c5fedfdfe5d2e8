package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentora/gatekeeper/pkg/middleware"
)

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewRequestIDMiddleware().Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
	require.NoError(t, err)

	requestID := resp.Header.Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	_, err = uuid.Parse(requestID)
	assert.NoError(t, err)
}

func TestRequestIDMiddleware_ReusesCallerID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewRequestIDMiddleware().Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", resp.Header.Get("X-Request-Id"))
}
