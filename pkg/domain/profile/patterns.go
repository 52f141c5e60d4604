package profile

import "time"

type Pattern struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

const (
	PatternRapidEscalation = "rapid_escalation"
	PatternDiverseAttacks  = "diverse_attacks"
	PatternUARotation      = "ua_rotation"
	PatternPersistent      = "persistent"
	PatternAutomatedScan   = "automated_scan"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	rapidEscalationDelta = 8
	diverseAttackTypes   = 3
	rotatedUserAgents    = 3
	persistentIncidents  = 10
	scanIncidents        = 5
	scanWindow           = 30 * time.Second
)

// DetectPatterns derives behavioral labels from the stored profile fields.
// Pure function: nothing here is persisted, labels are recomputed on every
// read so threshold changes apply retroactively.
func DetectPatterns(p *Profile) []Pattern {
	var patterns []Pattern

	if delta := maxScoreJump(p); delta >= rapidEscalationDelta {
		patterns = append(patterns, Pattern{Type: PatternRapidEscalation, Severity: SeverityHigh})
	}

	if len(p.AttackTypes) >= diverseAttackTypes {
		patterns = append(patterns, Pattern{Type: PatternDiverseAttacks, Severity: SeverityMedium})
	}

	if len(p.UserAgents) >= rotatedUserAgents {
		patterns = append(patterns, Pattern{Type: PatternUARotation, Severity: SeverityMedium})
	}

	if p.TotalIncidents >= persistentIncidents {
		patterns = append(patterns, Pattern{Type: PatternPersistent, Severity: SeverityMedium})
	}

	if burstWithin(p, scanIncidents, scanWindow) {
		patterns = append(patterns, Pattern{Type: PatternAutomatedScan, Severity: SeverityHigh})
	}

	return patterns
}

// maxScoreJump finds the largest increase between consecutive entries in
// the score timeline. The first entry counts as a jump from zero.
func maxScoreJump(p *Profile) int {
	maxDelta := 0
	prev := 0
	for _, entry := range p.ThreatScoreHistory {
		if d := entry.Score - prev; d > maxDelta {
			maxDelta = d
		}
		prev = entry.Score
	}
	return maxDelta
}

// burstWithin reports whether n incidents landed inside a single sliding
// window, the signature of an automated scanner.
func burstWithin(p *Profile, n int, window time.Duration) bool {
	if len(p.Incidents) < n {
		return false
	}
	for i := 0; i+n-1 < len(p.Incidents); i++ {
		if p.Incidents[i+n-1].Timestamp.Sub(p.Incidents[i].Timestamp) <= window {
			return true
		}
	}
	return false
}
