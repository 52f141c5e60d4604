package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/sirupsen/logrus"
)

type getProfileHandler struct {
	logger   *logrus.Logger
	profiles profilestore.Store
}

func NewGetProfileHandler(logger *logrus.Logger, profiles profilestore.Store) Handler {
	return &getProfileHandler{logger: logger, profiles: profiles}
}

func (h *getProfileHandler) Handle(c *fiber.Ctx) error {
	hashedIP := c.Params("hashed_ip")
	if hashedIP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hashed_ip is required"})
	}

	p, err := h.profiles.Get(c.Context(), hashedIP)
	if err != nil {
		h.logger.WithError(err).Error("failed to read attacker profile")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"profile":           p,
		"userAgentAnalysis": profilestore.AnalyzeUserAgents(p),
	})
}
