package contexthelpers

type contextKey string

const (
	sessionContextKey     = contextKey("session")
	currentPathContextKey = contextKey("currentPath")
	csrfTokenContextKey   = contextKey("csrfToken")
	cspNonceContextKey    = contextKey("cspNonce")
	requestIDContextKey   = contextKey("requestID")
)
