package deception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

// Honeytoken catalog: decoy key and path names that look legitimate but
// are never linked from real content. Fetching any of them is confirmed
// malicious intent regardless of accumulated score.
var honeytokenKeys = []string{
	"admin_backup",
	"db-credentials",
	"api-keys-prod",
	"wp-config",
	"env-backup",
	"id_rsa",
	"users-export",
	"payment-secrets",
}

// IsHoneytoken reports whether a requested key or path names a decoy.
// Matching is exact on the trimmed last path segment, not substring, so
// legitimate keys can never collide with the catalog.
func IsHoneytoken(key string) bool {
	_, ok := HoneytokenName(key)
	return ok
}

// HoneytokenName returns the catalog entry a key or path refers to.
// Archive-style extensions are stripped first so /admin_backup.zip still
// resolves to admin_backup.
func HoneytokenName(key string) (string, bool) {
	trimmed := strings.Trim(key, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(trimmed, ".zip")
	trimmed = strings.TrimSuffix(trimmed, ".sql")
	trimmed = strings.TrimSuffix(trimmed, ".txt")
	for _, token := range honeytokenKeys {
		if trimmed == token {
			return token, true
		}
	}
	return "", false
}

// HoneytokenKeys returns a copy of the catalog, used when seeding decoy
// links into responses and robots.txt.
func HoneytokenKeys() []string {
	out := make([]string, len(honeytokenKeys))
	copy(out, honeytokenKeys)
	return out
}

//go:generate mockery --name=Alarm --dir=. --output=./mocks --filename=alarm_mock.go --case=underscore --with-expecter
type Alarm interface {
	// Trigger flags the identity as a confirmed attacker for 24h and
	// returns the incident describing the access. This is a direct
	// high-confidence signal independent of score accumulation.
	Trigger(ctx context.Context, hashedIP, key, method, userAgent string) (profile.Incident, error)
	IsFlagged(ctx context.Context, hashedIP string) bool
}

type alarm struct {
	storage storage.Client
	logger  *logrus.Logger
}

func NewAlarm(storageClient storage.Client, logger *logrus.Logger) Alarm {
	return &alarm{storage: storageClient, logger: logger}
}

func (a *alarm) Trigger(ctx context.Context, hashedIP, key, method, userAgent string) (profile.Incident, error) {
	inc := profile.Incident{
		ID:        uuid.NewString(),
		Type:      "honeytoken_access",
		Key:       "honeytoken:" + key,
		Method:    method,
		UserAgent: userAgent,
		Timestamp: time.Now().UTC(),
	}

	flagKey := fmt.Sprintf(common.FlaggedKeyPattern, hashedIP)
	if err := a.storage.Set(ctx, flagKey, inc.Timestamp.Format(time.RFC3339), common.FlaggedAttackerTTL); err != nil {
		return inc, fmt.Errorf("failed to flag attacker: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"hashed_ip": hashedIP,
		"key":       key,
	}).Warn("honeytoken tripped, identity flagged")
	return inc, nil
}

func (a *alarm) IsFlagged(ctx context.Context, hashedIP string) bool {
	flagKey := fmt.Sprintf(common.FlaggedKeyPattern, hashedIP)
	exists, err := a.storage.Exists(ctx, flagKey)
	if err != nil {
		a.logger.WithError(err).Warn("flag check failed, assuming unflagged")
		return false
	}
	return exists
}
