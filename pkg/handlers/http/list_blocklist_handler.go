package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/sirupsen/logrus"
)

type listBlocklistHandler struct {
	logger    *logrus.Logger
	blocklist blocklist.Store
}

func NewListBlocklistHandler(logger *logrus.Logger, blocklistStore blocklist.Store) Handler {
	return &listBlocklistHandler{logger: logger, blocklist: blocklistStore}
}

func (h *listBlocklistHandler) Handle(c *fiber.Ctx) error {
	entries, err := h.blocklist.All(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list blocklist")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"blocked": entries, "count": len(entries)})
}
