package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/sirupsen/logrus"
)

type unblockIdentityHandler struct {
	logger    *logrus.Logger
	blocklist blocklist.Store
}

func NewUnblockIdentityHandler(logger *logrus.Logger, blocklistStore blocklist.Store) Handler {
	return &unblockIdentityHandler{logger: logger, blocklist: blocklistStore}
}

func (h *unblockIdentityHandler) Handle(c *fiber.Ctx) error {
	hashedIP := c.Params("hashed_ip")
	if hashedIP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hashed_ip is required"})
	}

	if err := h.blocklist.Unblock(c.Context(), hashedIP); err != nil {
		h.logger.WithError(err).Error("failed to unblock identity")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	h.logger.WithField("hashed_ip", hashedIP).Info("identity unblocked by admin")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "unblocked", "hashedIp": hashedIP})
}
