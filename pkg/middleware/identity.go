package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/identity"
	"github.com/sirupsen/logrus"
)

// identityMiddleware resolves every request to its hashed identity. The
// raw address is hashed immediately and never stored or logged.
type identityMiddleware struct {
	logger *logrus.Logger
}

func NewIdentityMiddleware(logger *logrus.Logger) Middleware {
	return &identityMiddleware{logger: logger}
}

func (m *identityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		hashed := identity.HashIP(identity.ClientIP(c))
		c.Locals(common.HashedIPContextKey, hashed)
		c.Locals(common.UserAgentKey, c.Get(fiber.HeaderUserAgent))
		c.Locals(common.TraceIdKey, uuid.NewString())
		return c.Next()
	}
}

// HashedIP reads the identity resolved for this request. Empty means the
// identity middleware did not run.
func HashedIP(c *fiber.Ctx) string {
	hashed, _ := c.Locals(common.HashedIPContextKey).(string)
	return hashed
}

func UserAgent(c *fiber.Ctx) string {
	ua, _ := c.Locals(common.UserAgentKey).(string)
	return ua
}

func IsAdminSession(c *fiber.Ctx) bool {
	admin, _ := c.Locals(common.AdminSessionKey).(bool)
	return admin
}
