package settings

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
)

// Settings is the single admin-editable configuration record that
// parameterizes scoring and countermeasures. Last write wins; every field
// has a compiled-in default so a missing or corrupt record never blinds
// the defense.
type Settings struct {
	Enabled      bool              `json:"enabled" mapstructure:"enabled"`
	Thresholds   threat.Thresholds `json:"thresholds" mapstructure:"thresholds"`
	ReasonPoints map[string]int    `json:"reasonPoints" mapstructure:"reasonPoints"`
	Rules        Rules             `json:"rules" mapstructure:"rules"`
	Tarpit       Tarpit            `json:"tarpit" mapstructure:"tarpit"`
	Entropy      Entropy           `json:"entropy" mapstructure:"entropy"`
	RateLimit    RateLimit         `json:"rateLimit" mapstructure:"rateLimit"`
	Alerting     Alerting          `json:"alerting" mapstructure:"alerting"`
	MaxIncidents int               `json:"maxIncidents" mapstructure:"maxIncidents"`
}

// Rules toggles each countermeasure independently. Destructive measures
// default to off.
type Rules struct {
	TarpitOnWarn        bool `json:"tarpitOnWarn" mapstructure:"tarpitOnWarn"`
	TarpitSuspiciousUA  bool `json:"tarpitSuspiciousUa" mapstructure:"tarpitSuspiciousUa"`
	TarpitRobots        bool `json:"tarpitRobots" mapstructure:"tarpitRobots"`
	EntropyForFlagged   bool `json:"entropyForFlagged" mapstructure:"entropyForFlagged"`
	ZipBombOnBlock      bool `json:"zipBombOnBlock" mapstructure:"zipBombOnBlock"`
	ZipBombOnHoneytoken bool `json:"zipBombOnHoneytoken" mapstructure:"zipBombOnHoneytoken"`
	SQLBackfire         bool `json:"sqlBackfire" mapstructure:"sqlBackfire"`
	LogPoisoning        bool `json:"logPoisoning" mapstructure:"logPoisoning"`
	AutoBlock           bool `json:"autoBlock" mapstructure:"autoBlock"`
}

type Tarpit struct {
	MinDelayMs int `json:"minDelayMs" mapstructure:"minDelayMs"`
	MaxDelayMs int `json:"maxDelayMs" mapstructure:"maxDelayMs"`
}

type Entropy struct {
	HeaderCount int `json:"headerCount" mapstructure:"headerCount"`
}

type RateLimit struct {
	MaxRequests   int `json:"maxRequests" mapstructure:"maxRequests"`
	WindowSeconds int `json:"windowSeconds" mapstructure:"windowSeconds"`
}

type Alerting struct {
	WebhookEnabled bool `json:"webhookEnabled" mapstructure:"webhookEnabled"`
	EmailEnabled   bool `json:"emailEnabled" mapstructure:"emailEnabled"`
}

func Default() Settings {
	points := make(map[string]int)
	for reason, pts := range threat.DefaultReasonPoints() {
		points[string(reason)] = pts
	}
	return Settings{
		Enabled:      true,
		Thresholds:   threat.DefaultThresholds(),
		ReasonPoints: points,
		Rules: Rules{
			TarpitOnWarn:        true,
			TarpitSuspiciousUA:  true,
			TarpitRobots:        true,
			EntropyForFlagged:   true,
			ZipBombOnBlock:      false,
			ZipBombOnHoneytoken: false,
			SQLBackfire:         false,
			LogPoisoning:        false,
			AutoBlock:           true,
		},
		Tarpit:       Tarpit{MinDelayMs: 250, MaxDelayMs: 3000},
		Entropy:      Entropy{HeaderCount: 200},
		RateLimit:    RateLimit{MaxRequests: 5, WindowSeconds: 10},
		Alerting:     Alerting{WebhookEnabled: true, EmailEnabled: false},
		MaxIncidents: 500,
	}
}

// Merge decodes a partial settings document over the given base. Fields
// absent from the partial keep their base values, so a stale admin client
// posting a subset can never zero out the rest of the configuration.
func Merge(base Settings, partial map[string]interface{}) (Settings, error) {
	merged := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &merged,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return base, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := decoder.Decode(partial); err != nil {
		return base, fmt.Errorf("failed to merge settings: %w", err)
	}
	return merged, nil
}

// EffectiveThresholds returns the configured thresholds, falling back to
// defaults for any unset value. Scoring must never fail.
func (s Settings) EffectiveThresholds() threat.Thresholds {
	t := s.Thresholds
	defaults := threat.DefaultThresholds()
	if t.Warn <= 0 {
		t.Warn = defaults.Warn
	}
	if t.Tarpit <= 0 {
		t.Tarpit = defaults.Tarpit
	}
	if t.Block <= 0 {
		t.Block = defaults.Block
	}
	return t
}

// EffectiveReasonPoints maps the stored point values onto the fixed reason
// catalog, substituting defaults for anything missing.
func (s Settings) EffectiveReasonPoints() map[threat.Reason]int {
	points := threat.DefaultReasonPoints()
	for key, pts := range s.ReasonPoints {
		if pts > 0 {
			points[threat.Reason(key)] = pts
		}
	}
	return points
}
