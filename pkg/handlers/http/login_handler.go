package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/session"
	"github.com/sirupsen/logrus"
)

type loginHandler struct {
	logger   *logrus.Logger
	sessions session.Manager
}

func NewLoginHandler(logger *logrus.Logger, sessions session.Manager) Handler {
	return &loginHandler{logger: logger, sessions: sessions}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *loginHandler) Handle(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	token, err := h.sessions.Login(req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.Warn("failed admin login attempt")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		h.logger.WithError(err).Error("failed to create session token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}
