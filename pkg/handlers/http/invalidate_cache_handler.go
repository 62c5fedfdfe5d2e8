package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/cache"
	"github.com/rentora/gatekeeper/pkg/common"
)

type invalidateCacheHandler struct {
	logger *logrus.Logger
	cache  *cache.Cache
}

type invalidateCacheRequest struct {
	Pattern   string `json:"pattern"`
	Namespace string `json:"namespace"`
}

func NewInvalidateCacheHandler(
	logger *logrus.Logger,
	cache *cache.Cache,
) Handler {
	return &invalidateCacheHandler{
		logger: logger,
		cache:  cache,
	}
}

// Handle removes cache entries. With a pattern it deletes the matching keys;
// without one it flushes the whole namespace.
func (h *invalidateCacheHandler) Handle(c *fiber.Ctx) error {
	var req invalidateCacheRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = common.CacheKeyPrefix
	}

	var err error
	if req.Pattern != "" {
		err = h.cache.DeleteByPattern(c.Context(), req.Pattern, namespace)
	} else {
		err = h.cache.Clear(c.Context(), namespace)
	}
	if err != nil {
		h.logger.WithError(err).Error("failed to invalidate cache")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to invalidate cache",
		})
	}

	h.logger.WithFields(logrus.Fields{
		"namespace": namespace,
		"pattern":   req.Pattern,
	}).Info("cache invalidated")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "cache invalidated",
	})
}
