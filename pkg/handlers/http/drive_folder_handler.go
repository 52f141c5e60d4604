package http

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

type driveFolderHandler struct {
	logger  *logrus.Logger
	fetcher httpx.Fetcher
	apiKey  string
}

func NewDriveFolderHandler(logger *logrus.Logger, fetcher httpx.Fetcher, apiKey string) Handler {
	return &driveFolderHandler{logger: logger, fetcher: fetcher, apiKey: apiKey}
}

// Handle lists a public Drive folder's files for the downloads page.
func (h *driveFolderHandler) Handle(c *fiber.Ctx) error {
	folderID := c.Query("id")
	if !driveIDPattern.MatchString(folderID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid folder id"})
	}
	if h.apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "downloads not configured"})
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
	query.Set("fields", "files(id,name,mimeType,size,modifiedTime)")
	query.Set("orderBy", "name")
	query.Set("key", h.apiKey)

	resp, err := h.fetcher.Get("https://www.googleapis.com/drive/v3/files?" + query.Encode())
	if err != nil {
		h.logger.WithError(err).Error("drive folder listing failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}
	if resp.StatusCode != fiber.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(resp.Body)
}
