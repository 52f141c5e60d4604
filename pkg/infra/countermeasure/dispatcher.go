package countermeasure

import (
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/settings"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/nightkernel/sentinel/pkg/infra/metrics"
	"github.com/sirupsen/logrus"
)

type Action string

const (
	ActionLogOnly     Action = "log_only"
	ActionTarpit      Action = "tarpit"
	ActionEntropy     Action = "entropy"
	ActionZipBomb     Action = "zip_bomb"
	ActionSQLBackfire Action = "sql_backfire"
	ActionLogPoison   Action = "log_poison"
	ActionBlock       Action = "block"
)

// tarpitHardCap bounds the delay so a platform request timeout can never
// cancel the response entirely.
const tarpitHardCap = 5 * time.Second

const repeatOffenderBlocks = 3

// Assessment is everything the dispatcher needs to pick a response for
// one request.
type Assessment struct {
	HashedIP    string
	Level       threat.Level
	Score       int
	Reasons     []threat.Reason
	Flagged     bool
	Honeytoken  bool
	SQLProbe    bool
	PriorBlocks int
}

func (a Assessment) hasReason(r threat.Reason) bool {
	for _, reason := range a.Reasons {
		if reason == r {
			return true
		}
	}
	return false
}

// Decision is the single deterministic outcome of rule evaluation.
// Action names the highest-priority rule that matched; header-level
// effects (entropy, log poison) and the tarpit delay compose underneath a
// non-terminal action.
type Decision struct {
	Action    Action
	Terminal  bool
	Delay     time.Duration
	Entropy   bool
	LogPoison bool
}

type rule struct {
	name     Action
	terminal bool
	applies  func(Assessment, settings.Settings) bool
}

// Rules in strict priority order:
// hard block > zip bomb > SQL backfire > tarpit > entropy > log poison > log only.
var rules = []rule{
	{
		name:     ActionBlock,
		terminal: true,
		applies: func(a Assessment, cfg settings.Settings) bool {
			return cfg.Rules.AutoBlock && a.Level == threat.LevelBlock
		},
	},
	{
		name:     ActionZipBomb,
		terminal: true,
		applies: func(a Assessment, cfg settings.Settings) bool {
			if cfg.Rules.ZipBombOnHoneytoken && a.Honeytoken {
				return true
			}
			return cfg.Rules.ZipBombOnBlock && (a.Level == threat.LevelBlock || a.PriorBlocks >= repeatOffenderBlocks)
		},
	},
	{
		name:     ActionSQLBackfire,
		terminal: true,
		applies: func(a Assessment, cfg settings.Settings) bool {
			return cfg.Rules.SQLBackfire && (a.SQLProbe || a.Honeytoken)
		},
	},
	{
		name: ActionTarpit,
		applies: func(a Assessment, cfg settings.Settings) bool {
			if a.Level == threat.LevelTarpit {
				return true
			}
			if cfg.Rules.TarpitOnWarn && a.Level == threat.LevelWarn {
				return true
			}
			if cfg.Rules.TarpitSuspiciousUA && a.hasReason(threat.ReasonSuspiciousUA) {
				return true
			}
			return cfg.Rules.TarpitRobots && a.hasReason(threat.ReasonRobotsViolation)
		},
	},
	{
		name: ActionEntropy,
		applies: func(a Assessment, cfg settings.Settings) bool {
			return cfg.Rules.EntropyForFlagged && a.Flagged
		},
	},
	{
		name: ActionLogPoison,
		applies: func(a Assessment, cfg settings.Settings) bool {
			return cfg.Rules.LogPoisoning && a.Flagged
		},
	},
}

//go:generate mockery --name=Dispatcher --dir=. --output=./mocks --filename=dispatcher_mock.go --case=underscore --with-expecter
type Dispatcher interface {
	Decide(a Assessment, cfg settings.Settings) Decision
	// Apply executes the decision against the response. It returns true
	// when the response was fully written and the handler chain must not
	// run. Internal failures degrade to log-and-pass: breaking the
	// legitimate product is worse than missing one countermeasure.
	Apply(c *fiber.Ctx, a Assessment, d Decision, cfg settings.Settings) bool
}

type dispatcher struct {
	blocklist blocklist.Store
	logger    *logrus.Logger
	sleep     func(time.Duration)
}

func NewDispatcher(blocklistStore blocklist.Store, logger *logrus.Logger) Dispatcher {
	return &dispatcher{
		blocklist: blocklistStore,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

func (d *dispatcher) Decide(a Assessment, cfg settings.Settings) Decision {
	decision := Decision{Action: ActionLogOnly}

	for _, r := range rules {
		if !r.applies(a, cfg) {
			continue
		}
		if decision.Action == ActionLogOnly {
			decision.Action = r.name
			decision.Terminal = r.terminal
		}
		if r.terminal {
			// A terminal action answers the request by itself; lower
			// priority effects are moot.
			break
		}
		switch r.name {
		case ActionTarpit:
			decision.Delay = tarpitDelay(cfg)
		case ActionEntropy:
			decision.Entropy = true
		case ActionLogPoison:
			decision.LogPoison = true
		}
	}
	return decision
}

func (d *dispatcher) Apply(c *fiber.Ctx, a Assessment, decision Decision, cfg settings.Settings) bool {
	if decision.Entropy {
		for name, value := range EntropyHeaders(cfg.Entropy.HeaderCount) {
			c.Set(name, value)
		}
		metrics.CountermeasuresApplied.WithLabelValues(string(ActionEntropy)).Inc()
	}
	if decision.LogPoison {
		for name, value := range logPoisonHeaders {
			c.Set(name, value)
		}
		metrics.CountermeasuresApplied.WithLabelValues(string(ActionLogPoison)).Inc()
	}
	if decision.Delay > 0 {
		d.sleep(decision.Delay)
		metrics.TarpitsServed.Inc()
	}

	if !decision.Terminal {
		return false
	}

	switch decision.Action {
	case ActionBlock:
		if err := d.blocklist.Block(c.Context(), a.HashedIP, "threat score threshold exceeded", common.AutoBlockTTL, true); err != nil {
			d.logger.WithError(err).Error("auto-block write failed, passing request through")
			return false
		}
		metrics.CountermeasuresApplied.WithLabelValues(string(ActionBlock)).Inc()
		metrics.RequestsBlocked.WithLabelValues("threat").Inc()
		if err := c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"}); err != nil {
			d.logger.WithError(err).Error("failed to write block response")
		}
		return true

	case ActionZipBomb:
		payload, err := ZipBomb()
		if err != nil {
			d.logger.WithError(err).Error("zip bomb unavailable, passing request through")
			return false
		}
		metrics.CountermeasuresApplied.WithLabelValues(string(ActionZipBomb)).Inc()
		c.Set(fiber.HeaderContentEncoding, "gzip")
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
		if err := c.Status(fiber.StatusOK).Send(payload); err != nil {
			d.logger.WithError(err).Error("failed to write bomb response")
		}
		return true

	case ActionSQLBackfire:
		metrics.CountermeasuresApplied.WithLabelValues(string(ActionSQLBackfire)).Inc()
		for name, value := range sqlBackfireHeaders {
			c.Set(name, value)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		if err := c.Status(fiber.StatusOK).Send(sqlBackfireBody); err != nil {
			d.logger.WithError(err).Error("failed to write backfire response")
		}
		return true
	}

	return false
}

func tarpitDelay(cfg settings.Settings) time.Duration {
	minMs := cfg.Tarpit.MinDelayMs
	maxMs := cfg.Tarpit.MaxDelayMs
	if minMs <= 0 {
		minMs = 250
	}
	if maxMs <= minMs {
		maxMs = minMs + 1
	}
	delay := time.Duration(minMs+rand.Intn(maxMs-minMs)) * time.Millisecond // #nosec G404
	if delay > tarpitHardCap {
		delay = tarpitHardCap
	}
	return delay
}
