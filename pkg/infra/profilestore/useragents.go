package profilestore

import (
	"sort"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
)

const (
	UACategoryBrowser    = "browser"
	UACategoryScript     = "script"
	UACategoryBot        = "bot"
	UACategoryAttackTool = "attack_tool"
	UACategoryUnknown    = "unknown"
)

var attackToolMarkers = []string{
	"sqlmap",
	"nikto",
	"wfuzz",
	"nmap",
	"masscan",
	"hydra",
	"gobuster",
	"dirbuster",
	"dirb",
	"metasploit",
	"burp",
	"nessus",
	"acunetix",
	"nuclei",
	"zgrab",
}

var scriptMarkers = []string{
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"libwww",
	"java/",
	"okhttp",
	"httpclient",
	"scrapy",
	"node-fetch",
	"axios",
	"ruby",
	"php",
}

var botMarkers = []string{
	"googlebot",
	"bingbot",
	"duckduckbot",
	"yandexbot",
	"baiduspider",
	"slurp",
	"facebookexternalhit",
	"bot",
	"crawler",
	"spider",
}

type UAEntry struct {
	UserAgent string `json:"userAgent"`
	Count     int    `json:"count"`
	Category  string `json:"category"`
}

type UAAnalysis struct {
	Entries []UAEntry `json:"entries"`
	Total   int       `json:"total"`
	TopUA   string    `json:"topUa"`
}

// ClassifyUserAgent buckets one UA string. Attack tools win over generic
// script markers so "sqlmap (python-requests)" is still an attack tool.
func ClassifyUserAgent(ua string) string {
	lower := strings.ToLower(ua)
	for _, marker := range attackToolMarkers {
		if strings.Contains(lower, marker) {
			return UACategoryAttackTool
		}
	}
	for _, marker := range scriptMarkers {
		if strings.Contains(lower, marker) {
			return UACategoryScript
		}
	}
	for _, marker := range botMarkers {
		if strings.Contains(lower, marker) {
			return UACategoryBot
		}
	}

	parsed := uasurfer.Parse(ua)
	if parsed.Browser.Name != uasurfer.BrowserUnknown {
		return UACategoryBrowser
	}
	return UACategoryUnknown
}

// AnalyzeUserAgents classifies every UA observed on a profile and returns
// frequency-ranked results.
func AnalyzeUserAgents(p *profile.Profile) UAAnalysis {
	analysis := UAAnalysis{Entries: make([]UAEntry, 0, len(p.UserAgents))}
	for ua, count := range p.UserAgents {
		analysis.Entries = append(analysis.Entries, UAEntry{
			UserAgent: ua,
			Count:     count,
			Category:  ClassifyUserAgent(ua),
		})
		analysis.Total += count
	}

	sort.Slice(analysis.Entries, func(i, j int) bool {
		if analysis.Entries[i].Count != analysis.Entries[j].Count {
			return analysis.Entries[i].Count > analysis.Entries[j].Count
		}
		return analysis.Entries[i].UserAgent < analysis.Entries[j].UserAgent
	})

	if len(analysis.Entries) > 0 {
		analysis.TopUA = analysis.Entries[0].UserAgent
	}
	return analysis
}
