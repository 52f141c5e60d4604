package http

import (
	"encoding/json"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

const maxContactMessages = 500

type contactHandler struct {
	logger  *logrus.Logger
	storage storage.Client
}

func NewContactHandler(logger *logrus.Logger, storageClient storage.Client) Handler {
	return &contactHandler{logger: logger, storage: storageClient}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *contactHandler) Handle(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if msg := validateContact(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	stored := contactMessage{
		ID:        uuid.NewString(),
		Name:      html.EscapeString(strings.TrimSpace(req.Name)),
		Email:     strings.TrimSpace(req.Email),
		Subject:   html.EscapeString(strings.TrimSpace(req.Subject)),
		Message:   html.EscapeString(req.Message),
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(stored)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal contact message")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if err := h.storage.LPush(c.Context(), common.ContactListKey, string(data)); err != nil {
		h.logger.WithError(err).Error("failed to store contact message")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
	if err := h.storage.LTrim(c.Context(), common.ContactListKey, 0, maxContactMessages-1); err != nil {
		h.logger.WithError(err).Warn("failed to trim contact messages")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "received", "id": stored.ID})
}

func validateContact(req contactRequest) string {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return "name is required and must be at most 100 characters"
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || len(email) > 254 {
		return "email is required and must be at most 254 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "email is not valid"
	}
	if len(req.Subject) > 200 {
		return "subject must be at most 200 characters"
	}
	if strings.TrimSpace(req.Message) == "" || len(req.Message) > 5000 {
		return "message is required and must be at most 5000 characters"
	}
	return ""
}
