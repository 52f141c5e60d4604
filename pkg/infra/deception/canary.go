package deception

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

const maxCanaryAlerts = 200

// CanaryAlert is the forensic record written when a canary document's
// embedded callback fires, correlating off-band activity back to the
// identity that originally exfiltrated the document.
type CanaryAlert struct {
	Token     string    `json:"token"`
	HashedIP  string    `json:"hashedIp"`
	UserAgent string    `json:"userAgent"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

//go:generate mockery --name=Canary --dir=. --output=./mocks --filename=canary_mock.go --case=underscore --with-expecter
type Canary interface {
	// Document renders a decoy file with a trackable callback URL baked in.
	Document(baseURL string) (token string, body []byte)
	RecordAlert(ctx context.Context, alert CanaryAlert) error
	Alerts(ctx context.Context, limit int) ([]CanaryAlert, error)
}

type canary struct {
	storage storage.Client
	logger  *logrus.Logger
}

func NewCanary(storageClient storage.Client, logger *logrus.Logger) Canary {
	return &canary{storage: storageClient, logger: logger}
}

// Document produces something that reads like a leaked credentials dump.
// The callback URL doubles as the beacon: any client that resolves it
// identifies itself.
func (c *canary) Document(baseURL string) (string, []byte) {
	token := uuid.NewString()
	body := fmt.Sprintf(`# internal credentials backup -- DO NOT SHARE
# generated by ops tooling, rotate quarterly

db_host=10.40.12.7
db_user=nk_prod
db_pass=Vk9%%sQz2#mRw7!pL
vault_unseal_hint=%s/api/canary/%s
s3_sync_endpoint=%s/api/canary/%s?src=s3
`, baseURL, token, baseURL, token)
	return token, []byte(body)
}

func (c *canary) RecordAlert(ctx context.Context, alert CanaryAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal canary alert: %w", err)
	}
	if err := c.storage.LPush(ctx, common.CanaryAlertListKey, string(data)); err != nil {
		return fmt.Errorf("failed to record canary alert: %w", err)
	}
	if err := c.storage.LTrim(ctx, common.CanaryAlertListKey, 0, maxCanaryAlerts-1); err != nil {
		c.logger.WithError(err).Warn("failed to trim canary alerts")
	}

	c.logger.WithFields(logrus.Fields{
		"token":     alert.Token,
		"hashed_ip": alert.HashedIP,
	}).Warn("canary document opened")
	return nil
}

func (c *canary) Alerts(ctx context.Context, limit int) ([]CanaryAlert, error) {
	if limit <= 0 || limit > maxCanaryAlerts {
		limit = maxCanaryAlerts
	}
	raw, err := c.storage.LRange(ctx, common.CanaryAlertListKey, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read canary alerts: %w", err)
	}
	alerts := make([]CanaryAlert, 0, len(raw))
	for _, item := range raw {
		var alert CanaryAlert
		if err := json.Unmarshal([]byte(item), &alert); err != nil {
			c.logger.WithError(err).Warn("corrupt canary alert skipped")
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
