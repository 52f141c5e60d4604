package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/incidentlog"
	"github.com/sirupsen/logrus"
)

type listIncidentsHandler struct {
	logger    *logrus.Logger
	incidents incidentlog.Log
}

func NewListIncidentsHandler(logger *logrus.Logger, incidents incidentlog.Log) Handler {
	return &listIncidentsHandler{logger: logger, incidents: incidents}
}

func (h *listIncidentsHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	incidents, err := h.incidents.Recent(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to read incident log")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	categorized := make([]fiber.Map, 0, len(incidents))
	for _, inc := range incidents {
		categorized = append(categorized, fiber.Map{
			"incident": inc,
			"category": incidentlog.Classify(inc),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"incidents": categorized, "count": len(categorized)})
}
