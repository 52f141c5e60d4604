package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/session"
	"github.com/sirupsen/logrus"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// sessionMiddleware detects a valid admin session and records it for the
// rest of the chain. It never rejects; admin-only routes enforce
// separately through the admin auth middleware.
type sessionMiddleware struct {
	logger  *logrus.Logger
	manager session.Manager
}

func NewSessionMiddleware(logger *logrus.Logger, manager session.Manager) Middleware {
	return &sessionMiddleware{logger: logger, manager: manager}
}

func (m *sessionMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(common.AdminSessionKey, false)

		authHeader := c.Get(authorizationHeader)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return c.Next()
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			return c.Next()
		}
		if err := m.manager.ValidateToken(tokenString); err != nil {
			m.logger.WithError(err).Debug("rejected session token")
			return c.Next()
		}

		c.Locals(common.AdminSessionKey, true)
		return c.Next()
	}
}
