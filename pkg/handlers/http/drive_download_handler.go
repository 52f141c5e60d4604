package http

import (
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

var driveIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,100}$`)

// driveDownloadHandler streams a public Drive file through the backend so
// the API key stays server-side and visitor addresses stay private.
type driveDownloadHandler struct {
	logger  *logrus.Logger
	fetcher httpx.Fetcher
	apiKey  string
}

func NewDriveDownloadHandler(logger *logrus.Logger, fetcher httpx.Fetcher, apiKey string) Handler {
	return &driveDownloadHandler{logger: logger, fetcher: fetcher, apiKey: apiKey}
}

func (h *driveDownloadHandler) Handle(c *fiber.Ctx) error {
	fileID := c.Query("id")
	if !driveIDPattern.MatchString(fileID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid file id"})
	}
	if h.apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "downloads not configured"})
	}

	url := fmt.Sprintf(
		"https://www.googleapis.com/drive/v3/files/%s?alt=media&key=%s",
		fileID, h.apiKey,
	)
	resp, err := h.fetcher.Get(url)
	if err != nil {
		h.logger.WithError(err).Error("drive download failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}
	if resp.StatusCode != fiber.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileID))
	return c.Status(fiber.StatusOK).Send(resp.Body)
}
