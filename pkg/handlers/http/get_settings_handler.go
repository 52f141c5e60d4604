package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/settingsstore"
	"github.com/sirupsen/logrus"
)

type getSettingsHandler struct {
	logger   *logrus.Logger
	settings settingsstore.Store
}

func NewGetSettingsHandler(logger *logrus.Logger, settings settingsstore.Store) Handler {
	return &getSettingsHandler{logger: logger, settings: settings}
}

func (h *getSettingsHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.settings.Load(c.Context()))
}
