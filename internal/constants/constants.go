package constants

// Session / context keys
const (
	ContextKeyUserID  = "user_id"
	SessionCookieName = "tracker_session"
)

// Auth
const (
	MinPasswordLength = 8
)

// Validation limits
const (
	MaxProjectTitleLength = 200
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
