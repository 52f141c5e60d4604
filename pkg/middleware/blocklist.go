package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/nightkernel/sentinel/pkg/infra/metrics"
	"github.com/sirupsen/logrus"
)

// blocklistMiddleware rejects known-blocked identities before any other
// processing. The check fails closed: if the store cannot answer, the
// request is refused rather than waved through.
type blocklistMiddleware struct {
	blocklist blocklist.Store
	logger    *logrus.Logger
}

func NewBlocklistMiddleware(blocklistStore blocklist.Store, logger *logrus.Logger) Middleware {
	return &blocklistMiddleware{blocklist: blocklistStore, logger: logger}
}

func (m *blocklistMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		hashed := HashedIP(c)
		if hashed == "" {
			return c.Next()
		}

		blocked, err := m.blocklist.IsBlocked(c.Context(), hashed)
		if err != nil {
			m.logger.WithError(err).Error("blocklist unavailable, refusing request")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
		}
		if blocked {
			metrics.RequestsBlocked.WithLabelValues("blocklist").Inc()
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}
