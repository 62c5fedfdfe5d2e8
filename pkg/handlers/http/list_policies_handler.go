package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/ratelimit"
)

type listPoliciesHandler struct {
	logger   *logrus.Logger
	policies map[string]ratelimit.Policy
}

func NewListPoliciesHandler(logger *logrus.Logger, policies map[string]ratelimit.Policy) Handler {
	return &listPoliciesHandler{
		logger:   logger,
		policies: policies,
	}
}

// Handle returns the effective admission policy table, read-only.
func (h *listPoliciesHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.policies)
}
