package profile

import (
	"time"

	"github.com/nightkernel/sentinel/pkg/domain/threat"
)

const (
	// MaxScoreHistory caps the per-identity threat timeline; the oldest
	// entry is evicted once the cap is reached.
	MaxScoreHistory = 100
	// MaxStoredIncidents caps the reference copies kept on the profile
	// itself. The incident log keeps its own bounded window.
	MaxStoredIncidents = 50
)

// Incident is an immutable record of one consequential security event.
type Incident struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Key            string            `json:"key"`
	Method         string            `json:"method"`
	UserAgent      string            `json:"userAgent"`
	ThreatScore    int               `json:"threatScore"`
	ThreatLevel    threat.Level      `json:"threatLevel"`
	Countermeasure string            `json:"countermeasure"`
	Timestamp      time.Time         `json:"timestamp"`
	RequestDetails map[string]string `json:"requestDetails,omitempty"`
}

// Profile accumulates everything observed about one hashed identity.
// There is exactly one profile per identity; it is merged, never replaced.
type Profile struct {
	HashedIP           string              `json:"hashedIp"`
	FirstSeen          time.Time           `json:"firstSeen"`
	LastSeen           time.Time           `json:"lastSeen"`
	TotalIncidents     int                 `json:"totalIncidents"`
	AttackTypes        map[string]int      `json:"attackTypes"`
	UserAgents         map[string]int      `json:"userAgents"`
	ThreatScoreHistory []threat.ScoreEntry `json:"threatScoreHistory"`
	Incidents          []Incident          `json:"incidents"`

	// Patterns is derived on read and never persisted.
	Patterns []Pattern `json:"behavioralPatterns,omitempty"`
}

func New(hashedIP string, now time.Time) *Profile {
	return &Profile{
		HashedIP:    hashedIP,
		FirstSeen:   now,
		LastSeen:    now,
		AttackTypes: make(map[string]int),
		UserAgents:  make(map[string]int),
	}
}

// Merge folds one incident into the profile: counters increment, maps
// union, history appends with cap eviction.
func (p *Profile) Merge(inc Incident, entry threat.ScoreEntry) {
	if p.AttackTypes == nil {
		p.AttackTypes = make(map[string]int)
	}
	if p.UserAgents == nil {
		p.UserAgents = make(map[string]int)
	}

	p.TotalIncidents++
	p.LastSeen = inc.Timestamp
	p.AttackTypes[inc.Type]++
	if inc.UserAgent != "" {
		p.UserAgents[inc.UserAgent]++
	}

	p.ThreatScoreHistory = append(p.ThreatScoreHistory, entry)
	if len(p.ThreatScoreHistory) > MaxScoreHistory {
		p.ThreatScoreHistory = p.ThreatScoreHistory[len(p.ThreatScoreHistory)-MaxScoreHistory:]
	}

	p.Incidents = append(p.Incidents, inc)
	if len(p.Incidents) > MaxStoredIncidents {
		p.Incidents = p.Incidents[len(p.Incidents)-MaxStoredIncidents:]
	}
}

// CurrentScore returns the newest accumulated score, zero for a fresh
// identity.
func (p *Profile) CurrentScore() int {
	if len(p.ThreatScoreHistory) == 0 {
		return 0
	}
	return p.ThreatScoreHistory[len(p.ThreatScoreHistory)-1].Score
}
