package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxRequests = 5
	DefaultWindow      = 10 * time.Second
)

//go:generate mockery --name=Limiter --dir=. --output=./mocks --filename=limiter_mock.go --case=underscore --with-expecter
type Limiter interface {
	// Allow counts one request against the identity's window and reports
	// whether it is within quota. A backing-store failure counts as a
	// violation: an outage must not become a bypass.
	Allow(ctx context.Context, hashedIP string) Decision
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type limiter struct {
	store  storage.Client
	logger *logrus.Logger
	max    int
	window time.Duration
}

func NewLimiter(store storage.Client, logger *logrus.Logger, max int, window time.Duration) Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &limiter{store: store, logger: logger, max: max, window: window}
}

func (l *limiter) Allow(ctx context.Context, hashedIP string) Decision {
	key := fmt.Sprintf(common.RateLimitKeyPattern, hashedIP)

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		l.logger.WithError(err).Error("rate limit store unreachable, failing closed")
		return Decision{Allowed: false, RetryAfter: l.window}
	}

	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window); err != nil {
			l.logger.WithError(err).Error("failed to set rate limit window, failing closed")
			return Decision{Allowed: false, RetryAfter: l.window}
		}
	}

	if count > int64(l.max) {
		return Decision{Allowed: false, RetryAfter: l.window}
	}

	return Decision{Allowed: true, Remaining: l.max - int(count)}
}
