package constants

const (
	ErrorBadRequest       = "Bad Request"
	ErrorInternal         = "Internal Service Error"
	ErrorNotAuthenticated = "Not authenticated"
	ErrorUserNotFound     = "User not found"
	ErrorNotFound         = "Not found"
	ErrorTokenRefresh     = "Token refresh failed"
	ErrorInvalidSettings  = "Invalid settings data"
)
