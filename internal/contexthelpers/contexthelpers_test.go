package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/dashboard", nil)
	require.False(t, contexthelpers.IsAuthenticated(r.Context()))
	require.Nil(t, contexthelpers.User(r.Context()))

	sess := models.Session{Token: "t", RefreshToken: "", User: models.User{ID: 1, Username: "meera", Role: models.RolePolice}} //nolint:exhaustruct // test
	r = contexthelpers.AuthenticateContext(r, sess)
	require.True(t, contexthelpers.IsAuthenticated(r.Context()))
	require.Equal(t, "meera", contexthelpers.User(r.Context()).Username)
}

func TestRequestValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/matches", nil)
	r = contexthelpers.SetCurrentPath(r, "/matches")
	r = contexthelpers.SetCSRFToken(r, "csrf")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	r = contexthelpers.SetRequestID(r, "id")

	ctx := r.Context()
	require.Equal(t, "/matches", contexthelpers.CurrentPath(ctx))
	require.Equal(t, "csrf", contexthelpers.CSRFToken(ctx))
	require.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))
	require.Equal(t, "id", contexthelpers.RequestID(ctx))
}
