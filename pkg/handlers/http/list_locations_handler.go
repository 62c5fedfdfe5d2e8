package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/cache"
	"github.com/rentora/gatekeeper/pkg/common"
	"github.com/rentora/gatekeeper/pkg/config"
)

type listLocationsHandler struct {
	logger    *logrus.Logger
	cache     *cache.Cache
	locations []config.Location
}

func NewListLocationsHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	locations []config.Location,
) Handler {
	return &listLocationsHandler{
		logger:    logger,
		cache:     cacheInstance,
		locations: locations,
	}
}

// Handle serves the configured pickup locations through the read-through
// cache, so repeated listing requests don't rebuild the payload.
func (h *listLocationsHandler) Handle(c *fiber.Ctx) error {
	locations, err := cache.GetOrSet(
		c.Context(),
		h.cache,
		common.LocationsCacheKey,
		func(ctx context.Context) ([]config.Location, error) {
			return h.locations, nil
		},
		cache.Config{TTL: common.LocationsCacheTTL},
	)
	if err != nil {
		h.logger.WithError(err).Error("failed to load locations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load locations",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"locations": locations,
	})
}
