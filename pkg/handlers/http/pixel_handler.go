package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/sirupsen/logrus"
)

type pixelHandler struct {
	logger *logrus.Logger
}

func NewPixelHandler(logger *logrus.Logger) Handler {
	return &pixelHandler{logger: logger}
}

// Handle serves the 1x1 tracking pixel with client hint headers attached.
func (h *pixelHandler) Handle(c *fiber.Ctx) error {
	for name, value := range deception.ClientHintHeaders {
		c.Set(name, value)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(deception.TrackingPixel)
}
