package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/nightkernel/sentinel/pkg/middleware"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const maxContentKeyLength = 200

type getContentHandler struct {
	logger  *logrus.Logger
	storage storage.Client
	canary  deception.Canary
	baseURL string
}

func NewGetContentHandler(
	logger *logrus.Logger,
	storageClient storage.Client,
	canary deception.Canary,
	baseURL string,
) Handler {
	return &getContentHandler{
		logger:  logger,
		storage: storageClient,
		canary:  canary,
		baseURL: baseURL,
	}
}

func (h *getContentHandler) Handle(c *fiber.Ctx) error {
	key := c.Params("key")
	if !validContentKey(key) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid key"})
	}
	// honeytokens win over the reserved-namespace guard: admin_backup
	// must answer with the canary document, not a revealing 403
	if deception.IsHoneytoken(key) {
		_, body := h.canary.Document(h.baseURL)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusOK).Send(body)
	}

	// defense state and admin records are not addressable through the
	// public content API
	if strings.HasPrefix(key, "nk-") || strings.HasPrefix(key, "admin") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	}

	value, err := h.storage.Get(c.Context(), fmt.Sprintf(common.ContentKeyPattern, key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		h.logger.WithError(err).Error("failed to read content")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	if key == "band-data" && !middleware.IsAdminSession(c) {
		value = stripTerminalCommands(value)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).SendString(value)
}

func validContentKey(key string) bool {
	if key == "" || len(key) > maxContentKeyLength {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// stripTerminalCommands drops the fake-shell command list from the stored
// band document. Unauthenticated reads never carry the field; only admin
// sessions see the full record.
func stripTerminalCommands(value string) string {
	parsed, err := fastjson.Parse(value)
	if err != nil {
		// not json, nothing to strip
		return value
	}
	obj, err := parsed.Object()
	if err != nil {
		return value
	}
	obj.Del("terminalCommands")
	return string(parsed.MarshalTo(nil))
}
