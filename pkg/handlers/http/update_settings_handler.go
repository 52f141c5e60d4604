package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/settingsstore"
	"github.com/sirupsen/logrus"
)

type updateSettingsHandler struct {
	logger   *logrus.Logger
	settings settingsstore.Store
}

func NewUpdateSettingsHandler(logger *logrus.Logger, settings settingsstore.Store) Handler {
	return &updateSettingsHandler{logger: logger, settings: settings}
}

// Handle merges a partial settings document over the stored record.
// Omitted fields keep their current values.
func (h *updateSettingsHandler) Handle(c *fiber.Ctx) error {
	var partial map[string]interface{}
	if err := json.Unmarshal(c.Body(), &partial); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	merged, err := h.settings.Update(c.Context(), partial)
	if err != nil {
		h.logger.WithError(err).Error("failed to update security settings")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	h.logger.Info("security settings updated")
	return c.Status(fiber.StatusOK).JSON(merged)
}
