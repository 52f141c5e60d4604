package threat

import "time"

type Level string

const (
	LevelClean  Level = "clean"
	LevelWarn   Level = "warn"
	LevelTarpit Level = "tarpit"
	LevelBlock  Level = "block"
)

type Thresholds struct {
	Warn   int `json:"warn" mapstructure:"warn"`
	Tarpit int `json:"tarpit" mapstructure:"tarpit"`
	Block  int `json:"block" mapstructure:"block"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warn: 3, Tarpit: 7, Block: 12}
}

// Classify maps a cumulative score onto a response tier. Comparisons are
// strict: a score exactly equal to a threshold escalates to the higher tier.
func Classify(score int, t Thresholds) Level {
	switch {
	case score < t.Warn:
		return LevelClean
	case score < t.Tarpit:
		return LevelWarn
	case score < t.Block:
		return LevelTarpit
	default:
		return LevelBlock
	}
}

// ScoreEntry is one point on an identity's threat timeline. Entries are
// appended, never mutated.
type ScoreEntry struct {
	Score     int       `json:"score"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}
