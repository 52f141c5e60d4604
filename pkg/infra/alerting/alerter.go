package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Event is the payload delivered to every configured channel.
type Event struct {
	EventType   string    `json:"eventType"`
	HashedIP    string    `json:"hashedIp"`
	ThreatScore int       `json:"threatScore"`
	ThreatLevel string    `json:"threatLevel"`
	Incident    string    `json:"incident"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sender delivers one alert over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

//go:generate mockery --name=Alerter --dir=. --output=./mocks --filename=alerter_mock.go --case=underscore --with-expecter
type Alerter interface {
	// Notify fans an alert out to every configured channel, deduplicated
	// per (identity, event type) within a short window. Delivery failures
	// are logged, never propagated.
	Notify(ctx context.Context, hashedIP, eventType string, inc profile.Incident)
}

type alerter struct {
	storage storage.Client
	logger  *logrus.Logger
	senders []Sender
}

func NewAlerter(storageClient storage.Client, logger *logrus.Logger, senders ...Sender) Alerter {
	return &alerter{storage: storageClient, logger: logger, senders: senders}
}

func (a *alerter) Notify(ctx context.Context, hashedIP, eventType string, inc profile.Incident) {
	if len(a.senders) == 0 {
		return
	}

	dedupKey := fmt.Sprintf(common.AlertDedupKeyPattern, hashedIP, eventType)
	fresh, err := a.storage.SetNX(ctx, dedupKey, "1", common.AlertDedupWindow)
	if err != nil {
		// Alerting is best-effort; if dedup state is unreachable we send
		// rather than silently drop.
		a.logger.WithError(err).Warn("alert dedup check failed, sending anyway")
	} else if !fresh {
		return
	}

	event := Event{
		EventType:   eventType,
		HashedIP:    hashedIP,
		ThreatScore: inc.ThreatScore,
		ThreatLevel: string(inc.ThreatLevel),
		Incident:    inc.Type,
		Timestamp:   time.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sender := range a.senders {
		sender := sender
		g.Go(func() error {
			if err := sender.Send(gctx, event); err != nil {
				a.logger.WithError(err).WithFields(logrus.Fields{
					"channel":    sender.Name(),
					"event_type": eventType,
				}).Error("alert delivery failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.WithError(err).Error("alert fan-out failed")
	}
}
