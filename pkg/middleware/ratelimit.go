package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/nightkernel/sentinel/pkg/infra/incidentlog"
	"github.com/nightkernel/sentinel/pkg/infra/metrics"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/nightkernel/sentinel/pkg/infra/ratelimit"
	"github.com/nightkernel/sentinel/pkg/infra/settingsstore"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

// rateLimitMiddleware enforces the per-identity request quota. Admin
// sessions are exempt. A rejected request is answered 429 immediately and
// never reaches scoring; the exceedance is still recorded against the
// identity's profile.
type rateLimitMiddleware struct {
	storage   storage.Client
	settings  settingsstore.Store
	profiles  profilestore.Store
	incidents incidentlog.Log
	logger    *logrus.Logger
}

func NewRateLimitMiddleware(
	storageClient storage.Client,
	settings settingsstore.Store,
	profiles profilestore.Store,
	incidents incidentlog.Log,
	logger *logrus.Logger,
) Middleware {
	return &rateLimitMiddleware{
		storage:   storageClient,
		settings:  settings,
		profiles:  profiles,
		incidents: incidents,
		logger:    logger,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsAdminSession(c) {
			return c.Next()
		}

		cfg := m.settings.Load(c.Context())
		if !cfg.Enabled {
			return c.Next()
		}

		hashed := HashedIP(c)
		limiter := ratelimit.NewLimiter(
			m.storage,
			m.logger,
			cfg.RateLimit.MaxRequests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		)

		decision := limiter.Allow(c.Context(), hashed)
		if decision.Allowed {
			return c.Next()
		}

		m.recordExceedance(c, hashed, cfg.EffectiveReasonPoints(), cfg.EffectiveThresholds())
		metrics.RequestsBlocked.WithLabelValues("rate_limit").Inc()

		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(decision.RetryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
	}
}

func (m *rateLimitMiddleware) recordExceedance(
	c *fiber.Ctx,
	hashed string,
	points map[threat.Reason]int,
	thresholds threat.Thresholds,
) {
	score := m.profiles.CurrentScore(c.Context(), hashed) + points[threat.ReasonRateLimitExceeded]
	inc := profile.Incident{
		ID:          uuid.NewString(),
		Type:        string(threat.ReasonRateLimitExceeded),
		Key:         c.Path(),
		Method:      c.Method(),
		UserAgent:   UserAgent(c),
		ThreatScore: score,
		ThreatLevel: threat.Classify(score, thresholds),
		Timestamp:   time.Now().UTC(),
	}

	if _, err := m.profiles.RecordIncident(c.Context(), hashed, inc); err != nil {
		m.logger.WithError(err).Warn("failed to record rate limit exceedance")
	}
	m.incidents.Append(c.Context(), inc)
	metrics.IncidentsRecorded.WithLabelValues(inc.Type).Inc()
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
