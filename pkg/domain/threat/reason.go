package threat

// Reason identifies a single weighted attack signal. The catalog is fixed;
// the points assigned to each reason are runtime-configurable.
type Reason string

const (
	ReasonHoneytokenAccess      Reason = "honeytoken_access"
	ReasonSuspiciousUA          Reason = "suspicious_ua"
	ReasonRobotsViolation       Reason = "robots_violation"
	ReasonMissingBrowserHeaders Reason = "missing_browser_headers"
	ReasonRateLimitExceeded     Reason = "rate_limit_exceeded"
	ReasonGenericAccept         Reason = "generic_accept"
)

func DefaultReasonPoints() map[Reason]int {
	return map[Reason]int{
		ReasonHoneytokenAccess:      10,
		ReasonSuspiciousUA:          3,
		ReasonRobotsViolation:       4,
		ReasonMissingBrowserHeaders: 2,
		ReasonRateLimitExceeded:     5,
		ReasonGenericAccept:         1,
	}
}

// Score sums the configured points for every detected reason. Unknown
// reasons score zero rather than failing, scoring must never error out.
func Score(reasons []Reason, points map[Reason]int) int {
	total := 0
	for _, r := range reasons {
		total += points[r]
	}
	return total
}
