package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/session"
	"github.com/sirupsen/logrus"
)

type adminAuthMiddleware struct {
	logger  *logrus.Logger
	manager session.Manager
}

func NewAdminAuthMiddleware(logger *logrus.Logger, manager session.Manager) Middleware {
	return &adminAuthMiddleware{logger: logger, manager: manager}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(authorizationHeader)
		if authHeader == "" {
			m.logger.Debug("no authorization header provided")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format"})
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Empty token provided"})
		}

		if err := m.manager.ValidateToken(tokenString); err != nil {
			m.logger.WithError(err).Debug("invalid token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		return c.Next()
	}
}
