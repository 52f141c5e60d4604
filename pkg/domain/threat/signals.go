package threat

import "strings"

var suspiciousUAMarkers = []string{
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"libwww-perl",
	"java/",
	"scrapy",
	"httpclient",
	"okhttp",
	"sqlmap",
	"nikto",
	"nmap",
	"masscan",
	"wfuzz",
	"gobuster",
	"dirbuster",
	"hydra",
	"nessus",
	"zgrab",
	"headless",
}

// SuspiciousUserAgent reports whether the user agent matches a known
// automation or attack-tool signature. An empty UA counts as suspicious,
// every real browser sends one.
func SuspiciousUserAgent(ua string) bool {
	if strings.TrimSpace(ua) == "" {
		return true
	}
	lower := strings.ToLower(ua)
	for _, marker := range suspiciousUAMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MissingBrowserHeaders reports whether the request lacks headers every
// mainstream browser sends. Cheap signal, catches bare HTTP libraries.
func MissingBrowserHeaders(acceptLanguage, acceptEncoding string) bool {
	return acceptLanguage == "" || acceptEncoding == ""
}

// GenericAccept reports whether the Accept header is the wildcard default
// of scripted clients rather than a browser's content negotiation list.
func GenericAccept(accept string) bool {
	trimmed := strings.TrimSpace(accept)
	return trimmed == "*/*" || trimmed == ""
}
