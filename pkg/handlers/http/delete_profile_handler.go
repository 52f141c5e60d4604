package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/sirupsen/logrus"
)

type deleteProfileHandler struct {
	logger   *logrus.Logger
	profiles profilestore.Store
}

func NewDeleteProfileHandler(logger *logrus.Logger, profiles profilestore.Store) Handler {
	return &deleteProfileHandler{logger: logger, profiles: profiles}
}

func (h *deleteProfileHandler) Handle(c *fiber.Ctx) error {
	hashedIP := c.Params("hashed_ip")
	if hashedIP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hashed_ip is required"})
	}

	if err := h.profiles.Delete(c.Context(), hashedIP); err != nil {
		h.logger.WithError(err).Error("failed to delete attacker profile")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	h.logger.WithField("hashed_ip", hashedIP).Info("attacker profile deleted by admin")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "deleted", "hashedIp": hashedIP})
}
