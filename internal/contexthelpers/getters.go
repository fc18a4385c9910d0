package contexthelpers

import (
	"context"

	"github.com/sangamsetu/casedesk/internal/models"
)

// Session returns the restored session, or nil for anonymous requests.
func Session(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

func IsAuthenticated(ctx context.Context) bool {
	return Session(ctx) != nil
}

// User returns the signed in user, or nil.
func User(ctx context.Context) *models.User {
	if sess := Session(ctx); sess != nil {
		return &sess.User
	}
	return nil
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

func RequestID(ctx context.Context) string {
	id, ok := ctx.Value(requestIDContextKey).(string)
	if !ok {
		return ""
	}

	return id
}
