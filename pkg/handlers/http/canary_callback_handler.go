package http

import (
	"time"

	"github.com/avct/uasurfer"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/middleware"
	"github.com/sirupsen/logrus"
)

// canaryCallbackHandler fires when someone resolves a URL that only exists
// inside an exfiltrated canary document. The response is an innocuous
// pixel; the value is the forensic record.
type canaryCallbackHandler struct {
	logger *logrus.Logger
	canary deception.Canary
}

func NewCanaryCallbackHandler(logger *logrus.Logger, canary deception.Canary) Handler {
	return &canaryCallbackHandler{logger: logger, canary: canary}
}

func (h *canaryCallbackHandler) Handle(c *fiber.Ctx) error {
	token := c.Params("token")
	if _, err := uuid.Parse(token); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	ua := middleware.UserAgent(c)
	alert := deception.CanaryAlert{
		Token:     token,
		HashedIP:  middleware.HashedIP(c),
		UserAgent: ua,
		Device:    deviceName(ua),
		Timestamp: time.Now().UTC(),
	}
	if err := h.canary.RecordAlert(c.Context(), alert); err != nil {
		h.logger.WithError(err).Error("failed to record canary alert")
	}

	for name, value := range deception.ClientHintHeaders {
		c.Set(name, value)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(deception.TrackingPixel)
}

func deviceName(uaString string) string {
	ua := uasurfer.Parse(uaString)
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		return "computer"
	case uasurfer.DeviceTablet:
		return "tablet"
	case uasurfer.DevicePhone:
		return "phone"
	case uasurfer.DeviceConsole:
		return "console"
	case uasurfer.DeviceWearable:
		return "wearable"
	case uasurfer.DeviceTV:
		return "tv"
	default:
		return "unknown"
	}
}
