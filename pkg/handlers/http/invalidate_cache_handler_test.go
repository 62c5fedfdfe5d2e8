package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentora/gatekeeper/pkg/cache"
	handlers "github.com/rentora/gatekeeper/pkg/handlers/http"
	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
)

func newCacheApp(t *testing.T) (*fiber.App, *cache.Cache) {
	t.Helper()
	store := keyvalue.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	cacheInstance := cache.New(keyvalue.StaticResolver{Backend: store}, logger)

	app := fiber.New()
	app.Post("/cache/invalidate", handlers.NewInvalidateCacheHandler(logger, cacheInstance).Handle)
	return app, cacheInstance
}

func TestInvalidateCacheHandler_Pattern(t *testing.T) {
	app, cacheInstance := newCacheApp(t)
	ctx := context.Background()

	require.NoError(t, cacheInstance.Set(ctx, "cars:1", `"v"`, cache.Config{}))
	require.NoError(t, cacheInstance.Set(ctx, "cars:2", `"v"`, cache.Config{}))
	require.NoError(t, cacheInstance.Set(ctx, "locations", `"v"`, cache.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", strings.NewReader(`{"pattern":"cars:*"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := cacheInstance.Get(ctx, "cars:1", "")
	assert.False(t, ok)
	_, ok = cacheInstance.Get(ctx, "cars:2", "")
	assert.False(t, ok)
	_, ok = cacheInstance.Get(ctx, "locations", "")
	assert.True(t, ok)
}

func TestInvalidateCacheHandler_FlushesNamespaceWithoutPattern(t *testing.T) {
	app, cacheInstance := newCacheApp(t)
	ctx := context.Background()

	require.NoError(t, cacheInstance.Set(ctx, "cars:1", `"v"`, cache.Config{}))
	require.NoError(t, cacheInstance.Set(ctx, "locations", `"v"`, cache.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := cacheInstance.Get(ctx, "cars:1", "")
	assert.False(t, ok)
	_, ok = cacheInstance.Get(ctx, "locations", "")
	assert.False(t, ok)
}

func TestInvalidateCacheHandler_InvalidBody(t *testing.T) {
	app, _ := newCacheApp(t)

	req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
