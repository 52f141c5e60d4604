package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

type setContentHandler struct {
	logger  *logrus.Logger
	storage storage.Client
}

func NewSetContentHandler(logger *logrus.Logger, storageClient storage.Client) Handler {
	return &setContentHandler{logger: logger, storage: storageClient}
}

// Handle stores one content record. Admin-gated; the body must be valid
// JSON so the public read side always serves something parseable.
func (h *setContentHandler) Handle(c *fiber.Ctx) error {
	key := c.Params("key")
	if !validContentKey(key) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid key"})
	}
	if strings.HasPrefix(key, "nk-") || strings.HasPrefix(key, "admin") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "reserved key"})
	}

	body := c.Body()
	if !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must be valid json"})
	}

	if err := h.storage.Set(c.Context(), fmt.Sprintf(common.ContentKeyPattern, key), string(body), 0); err != nil {
		h.logger.WithError(err).Error("failed to store content")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	h.logger.WithField("key", key).Info("content updated")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "stored", "key": key})
}
