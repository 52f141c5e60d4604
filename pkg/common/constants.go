package common

import "time"

// Every key the service owns carries the nk- prefix so defense state can
// never collide with site content stored through /api/kv.
const (
	FlaggedKeyPattern     = "nk-flagged:%s"
	BlockedKeyPattern     = "nk-blocked:%s"
	BlockCountKeyPattern  = "nk-block-count:%s"
	BlocklistIndexKey     = "nk-blocklist"
	ProfileKeyPattern     = "nk-profile:%s"
	ProfileIndexKey       = "nk-profile-list"
	RateLimitKeyPattern   = "nk-rl:%s"
	IncidentListKey       = "nk-incidents"
	CanaryAlertListKey    = "nk-canary-alerts"
	SettingsKey           = "nk-security-settings"
	ContactListKey        = "nk-contact-messages"
	AlertDedupKeyPattern  = "nk-alert-dedup:%s:%s"
	ContentKeyPattern     = "nk-content:%s"

	FlaggedAttackerTTL = 24 * time.Hour
	AutoBlockTTL       = 24 * time.Hour
	ProfileTTL         = 30 * 24 * time.Hour
	AlertDedupWindow   = 5 * time.Minute
)
