package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/sirupsen/logrus"
)

type listCanaryAlertsHandler struct {
	logger *logrus.Logger
	canary deception.Canary
}

func NewListCanaryAlertsHandler(logger *logrus.Logger, canary deception.Canary) Handler {
	return &listCanaryAlertsHandler{logger: logger, canary: canary}
}

func (h *listCanaryAlertsHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	alerts, err := h.canary.Alerts(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to read canary alerts")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"alerts": alerts, "count": len(alerts)})
}
