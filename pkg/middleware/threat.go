package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/domain/settings"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/nightkernel/sentinel/pkg/infra/alerting"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/nightkernel/sentinel/pkg/infra/countermeasure"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/infra/incidentlog"
	"github.com/nightkernel/sentinel/pkg/infra/metrics"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/nightkernel/sentinel/pkg/infra/settingsstore"
	"github.com/sirupsen/logrus"
)

const kvPathPrefix = "/api/kv/"

// threatMiddleware is the request assessment pipeline: gather signals,
// accumulate the identity's score, classify, dispatch the countermeasure
// and record the incident. Assessment failures degrade to pass-through;
// the band's site must survive a broken defense layer.
type threatMiddleware struct {
	settings   settingsstore.Store
	profiles   profilestore.Store
	incidents  incidentlog.Log
	alarm      deception.Alarm
	alerter    alerting.Alerter
	dispatcher countermeasure.Dispatcher
	blocked    blocklist.Store
	logger     *logrus.Logger
}

func NewThreatMiddleware(
	settings settingsstore.Store,
	profiles profilestore.Store,
	incidents incidentlog.Log,
	alarm deception.Alarm,
	alerter alerting.Alerter,
	dispatcher countermeasure.Dispatcher,
	blocked blocklist.Store,
	logger *logrus.Logger,
) Middleware {
	return &threatMiddleware{
		settings:   settings,
		profiles:   profiles,
		incidents:  incidents,
		alarm:      alarm,
		alerter:    alerter,
		dispatcher: dispatcher,
		blocked:    blocked,
		logger:     logger,
	}
}

func (m *threatMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsAdminSession(c) {
			return c.Next()
		}

		cfg := m.settings.Load(c.Context())
		if !cfg.Enabled {
			return c.Next()
		}

		hashed := HashedIP(c)
		ua := UserAgent(c)
		path := c.Path()

		reasons := m.collectSignals(c, ua, path)
		honeytoken := isHoneytokenRequest(c.Method(), path)
		if honeytoken {
			reasons = append([]threat.Reason{threat.ReasonHoneytokenAccess}, reasons...)
		}

		flagged := m.alarm.IsFlagged(c.Context(), hashed)
		sqlProbe := countermeasure.LooksLikeSQLProbe(path + "?" + string(c.Request().URI().QueryString()))

		if len(reasons) == 0 && !flagged && !sqlProbe {
			return c.Next()
		}

		score := m.profiles.CurrentScore(c.Context(), hashed) + threat.Score(reasons, cfg.EffectiveReasonPoints())
		level := threat.Classify(score, cfg.EffectiveThresholds())

		assessment := countermeasure.Assessment{
			HashedIP:    hashed,
			Level:       level,
			Score:       score,
			Reasons:     reasons,
			Flagged:     flagged || honeytoken,
			Honeytoken:  honeytoken,
			SQLProbe:    sqlProbe,
			PriorBlocks: m.blocked.BlockCount(c.Context(), hashed),
		}
		decision := m.dispatcher.Decide(assessment, cfg)

		if honeytoken {
			m.tripHoneytoken(c, hashed, path, ua)
		}
		if len(reasons) > 0 {
			m.record(c, hashed, reasons, score, level, decision, cfg)
		}

		if m.dispatcher.Apply(c, assessment, decision, cfg) {
			return nil
		}
		return c.Next()
	}
}

func (m *threatMiddleware) collectSignals(c *fiber.Ctx, ua, path string) []threat.Reason {
	var reasons []threat.Reason
	if threat.SuspiciousUserAgent(ua) {
		reasons = append(reasons, threat.ReasonSuspiciousUA)
	}
	if deception.IsDecoyPath(path) {
		reasons = append(reasons, threat.ReasonRobotsViolation)
	}
	if threat.MissingBrowserHeaders(c.Get(fiber.HeaderAcceptLanguage), c.Get(fiber.HeaderAcceptEncoding)) {
		reasons = append(reasons, threat.ReasonMissingBrowserHeaders)
	}
	if threat.GenericAccept(c.Get(fiber.HeaderAccept)) {
		reasons = append(reasons, threat.ReasonGenericAccept)
	}
	return reasons
}

// isHoneytokenRequest matches both content fetches (/api/kv/db-credentials)
// and direct path probes (/admin_backup, /admin_backup.zip).
func isHoneytokenRequest(method, path string) bool {
	if method != fiber.MethodGet {
		return false
	}
	if strings.HasPrefix(path, kvPathPrefix) {
		return deception.IsHoneytoken(strings.TrimPrefix(path, kvPathPrefix))
	}
	return deception.IsHoneytoken(path)
}

func (m *threatMiddleware) tripHoneytoken(c *fiber.Ctx, hashed, path, ua string) {
	key, ok := deception.HoneytokenName(strings.TrimPrefix(path, kvPathPrefix))
	if !ok {
		key = strings.Trim(path, "/")
	}
	if _, err := m.alarm.Trigger(c.Context(), hashed, key, c.Method(), ua); err != nil {
		m.logger.WithError(err).Error("failed to flag honeytoken access")
	}
	metrics.HoneytokenHits.Inc()
}

func (m *threatMiddleware) record(
	c *fiber.Ctx,
	hashed string,
	reasons []threat.Reason,
	score int,
	level threat.Level,
	decision countermeasure.Decision,
	cfg settings.Settings,
) {
	inc := profile.Incident{
		ID:             uuid.NewString(),
		Type:           string(reasons[0]),
		Key:            c.Path(),
		Method:         c.Method(),
		UserAgent:      UserAgent(c),
		ThreatScore:    score,
		ThreatLevel:    level,
		Countermeasure: string(decision.Action),
		Timestamp:      time.Now().UTC(),
		RequestDetails: map[string]string{
			"reasons": joinReasons(reasons),
		},
	}

	if _, err := m.profiles.RecordIncident(c.Context(), hashed, inc); err != nil {
		m.logger.WithError(err).Warn("failed to update attacker profile")
	}
	m.incidents.Append(c.Context(), inc)
	metrics.IncidentsRecorded.WithLabelValues(inc.Type).Inc()

	if inc.Type == string(threat.ReasonHoneytokenAccess) || level == threat.LevelBlock {
		m.alerter.Notify(c.Context(), hashed, inc.Type, inc)
	}
}

func joinReasons(reasons []threat.Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
