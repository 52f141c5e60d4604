package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/httpx"
	"github.com/nightkernel/sentinel/pkg/infra/proxyguard"
	"github.com/sirupsen/logrus"
)

// imageProxyHandler fetches remote images on behalf of the frontend so
// external hosts never see visitor addresses. Targets are validated
// against internal networks; upstream failures collapse to a generic 502
// that leaks nothing about the internal topology.
type imageProxyHandler struct {
	logger  *logrus.Logger
	guard   *proxyguard.Guard
	fetcher httpx.Fetcher
}

func NewImageProxyHandler(logger *logrus.Logger, guard *proxyguard.Guard, fetcher httpx.Fetcher) Handler {
	return &imageProxyHandler{logger: logger, guard: guard, fetcher: fetcher}
}

func (h *imageProxyHandler) Handle(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}

	target, err := h.guard.ValidateURL(rawURL)
	if err != nil {
		h.logger.WithError(err).Warn("rejected image proxy target")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url not allowed"})
	}

	resp, err := h.fetcher.Get(target.String())
	if err != nil {
		h.logger.WithError(err).Error("image proxy upstream failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}
	if resp.StatusCode != fiber.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}
	if !strings.HasPrefix(resp.ContentType, "image/") {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Status(fiber.StatusOK).Send(resp.Body)
}
