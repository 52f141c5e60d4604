package incidentlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

const DefaultMaxEntries = 500

// Labels for the admin dashboard taxonomy.
const (
	LabelRobotsViolation  = "robots_violation"
	LabelThreatEscalation = "threat_escalation"
	LabelHardBlock        = "hard_block"
	LabelHoneytokenAccess = "honeytoken_access"
	LabelSecurityEvent    = "security_event"
)

//go:generate mockery --name=Log --dir=. --output=./mocks --filename=incident_log_mock.go --case=underscore --with-expecter
type Log interface {
	// Append records one incident at the head of the bounded list. Writes
	// are best-effort: a store failure is logged, never propagated into
	// the request path.
	Append(ctx context.Context, inc profile.Incident)
	Recent(ctx context.Context, limit int) ([]profile.Incident, error)
}

type log struct {
	storage storage.Client
	logger  *logrus.Logger
	max     int
}

func NewLog(storageClient storage.Client, logger *logrus.Logger, max int) Log {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &log{storage: storageClient, logger: logger, max: max}
}

func (l *log) Append(ctx context.Context, inc profile.Incident) {
	data, err := json.Marshal(inc)
	if err != nil {
		l.logger.WithError(err).Error("failed to marshal incident")
		return
	}
	if err := l.storage.LPush(ctx, common.IncidentListKey, string(data)); err != nil {
		l.logger.WithError(err).Error("failed to append incident, continuing")
		return
	}
	if err := l.storage.LTrim(ctx, common.IncidentListKey, 0, int64(l.max-1)); err != nil {
		l.logger.WithError(err).Warn("failed to trim incident log")
	}
}

// Recent returns up to limit incidents, most recent first.
func (l *log) Recent(ctx context.Context, limit int) ([]profile.Incident, error) {
	if limit <= 0 || limit > l.max {
		limit = l.max
	}
	raw, err := l.storage.LRange(ctx, common.IncidentListKey, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read incident log: %w", err)
	}
	incidents := make([]profile.Incident, 0, len(raw))
	for _, item := range raw {
		var inc profile.Incident
		if err := json.Unmarshal([]byte(item), &inc); err != nil {
			l.logger.WithError(err).Warn("corrupt incident entry skipped")
			continue
		}
		incidents = append(incidents, inc)
	}
	return incidents, nil
}

// Classify maps an incident onto the dashboard label taxonomy by
// inspecting its type and key.
func Classify(inc profile.Incident) string {
	switch {
	case inc.Type == "honeytoken_access" || strings.HasPrefix(inc.Key, "honeytoken:"):
		return LabelHoneytokenAccess
	case inc.Type == "robots_violation":
		return LabelRobotsViolation
	case inc.Type == "hard_block" || inc.Countermeasure == "block":
		return LabelHardBlock
	case inc.ThreatScore > 0:
		return LabelThreatEscalation
	default:
		return LabelSecurityEvent
	}
}
