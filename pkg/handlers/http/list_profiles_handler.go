package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/sirupsen/logrus"
)

type listProfilesHandler struct {
	logger   *logrus.Logger
	profiles profilestore.Store
}

func NewListProfilesHandler(logger *logrus.Logger, profiles profilestore.Store) Handler {
	return &listProfilesHandler{logger: logger, profiles: profiles}
}

func (h *listProfilesHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	profiles, err := h.profiles.All(c.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("failed to list attacker profiles")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profiles": profiles, "count": len(profiles)})
}
