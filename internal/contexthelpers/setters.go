package contexthelpers

import (
	"context"
	"net/http"

	"github.com/sangamsetu/casedesk/internal/models"
)

func AuthenticateContext(r *http.Request, sess models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, &sess)
	return r.WithContext(ctx)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, csrfToken string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, csrfToken)
	return r.WithContext(ctx)
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	ctx := context.WithValue(r.Context(), cspNonceContextKey, nonce)
	return r.WithContext(ctx)
}

func SetRequestID(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDContextKey, id)
	return r.WithContext(ctx)
}
