package common

type contextKey string

const (
	TraceIdKey         contextKey = "trace_id"
	HashedIPContextKey contextKey = "hashed_ip"
	UserAgentKey       contextKey = "user_agent"
	AdminSessionKey    contextKey = "admin_session"
	FlaggedContextKey  contextKey = "flagged_attacker"
)
