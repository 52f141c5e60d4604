package countermeasure

import (
	"regexp"
	"strings"
)

var sqlProbePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)union[\s/*]+select`),
	regexp.MustCompile(`(?i)'\s*or\s+'?1'?\s*=\s*'?1`),
	regexp.MustCompile(`(?i)"\s*or\s+"?1"?\s*=\s*"?1`),
	regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)information_schema`),
	regexp.MustCompile(`(?i)\bsleep\s*\(`),
	regexp.MustCompile(`(?i)benchmark\s*\(`),
	regexp.MustCompile(`(?i)load_file\s*\(`),
	regexp.MustCompile(`(?i);\s*--`),
	regexp.MustCompile(`(?i)waitfor\s+delay`),
}

// LooksLikeSQLProbe inspects request content (path, query string, body)
// for injection probe signatures.
func LooksLikeSQLProbe(content string) bool {
	if content == "" {
		return false
	}
	decoded := strings.ReplaceAll(content, "%20", " ")
	decoded = strings.ReplaceAll(decoded, "+", " ")
	decoded = strings.ReplaceAll(decoded, "%27", "'")
	for _, pattern := range sqlProbePatterns {
		if pattern.MatchString(decoded) {
			return true
		}
	}
	return false
}
