package session_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/session"
	"github.com/sangamsetu/casedesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	pair       models.TokenPair
	tokenErr   error
	user       models.User
	profileErr error
}

func (f fakeAuth) ObtainToken(context.Context, string, string) (models.TokenPair, error) {
	return f.pair, f.tokenErr
}

func (f fakeAuth) Profile(context.Context) (models.User, error) {
	return f.user, f.profileErr
}

var officer = models.User{ID: 2, Username: "officer", FirstName: "Meera", Role: models.RolePolice} //nolint:exhaustruct // test

func newStore(storage session.Storage, auth session.Authenticator) *session.Store {
	return session.NewStore(storage, auth, testhelpers.NewLogger(io.Discard))
}

func TestLogin(t *testing.T) {
	ctx := t.Context()
	storage := session.NewMemoryStorage()
	store := newStore(storage, fakeAuth{pair: models.TokenPair{Access: "a1", Refresh: "r1"}, user: officer}) //nolint:exhaustruct // test

	sess, err := store.Login(ctx, "officer", "secret")
	require.NoError(t, err)
	require.Equal(t, "a1", sess.Token)
	require.Equal(t, "r1", sess.RefreshToken)
	require.Equal(t, officer, sess.User)

	current, ok := store.Current(ctx)
	require.True(t, ok)
	require.Equal(t, sess, current)
	require.Equal(t, "a1", store.Token(ctx))
}

func TestFailedLoginLeavesSessionUntouched(t *testing.T) {
	ctx := t.Context()
	storage := session.NewMemoryStorage()
	good := newStore(storage, fakeAuth{pair: models.TokenPair{Access: "a1", Refresh: "r1"}, user: officer}) //nolint:exhaustruct // test
	_, err := good.Login(ctx, "officer", "secret")
	require.NoError(t, err)

	tests := []struct {
		name        string
		auth        fakeAuth
		wantMessage string
	}{
		{
			name: "bad credentials with detail",
			auth: fakeAuth{tokenErr: &api.Error{Status: 401, Detail: "No active account found with the given credentials"}}, //nolint:exhaustruct // test
			wantMessage: "No active account found with the given credentials",
		},
		{
			name:        "network failure",
			auth:        fakeAuth{tokenErr: errors.New("connection refused")}, //nolint:exhaustruct // test
			wantMessage: "Login failed. Please check your credentials.",
		},
		{
			name: "profile fetch fails",
			auth: fakeAuth{ //nolint:exhaustruct // test
				pair:       models.TokenPair{Access: "a2", Refresh: ""},
				profileErr: &api.Error{Status: 500}, //nolint:exhaustruct // test
			},
			wantMessage: "Login failed. Please check your credentials.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err = newStore(storage, tt.auth).Login(ctx, "someone", "wrong")
			var authErr *session.AuthenticationError
			require.True(t, errors.As(err, &authErr))
			require.Equal(t, tt.wantMessage, authErr.Message())

			current, ok := good.Current(ctx)
			require.True(t, ok)
			require.Equal(t, "a1", current.Token)
			require.Equal(t, "officer", current.User.Username)
		})
	}
}

func TestLogoutRemovesAllKeys(t *testing.T) {
	ctx := t.Context()
	storage := session.NewMemoryStorage()
	store := newStore(storage, fakeAuth{pair: models.TokenPair{Access: "a1", Refresh: "r1"}, user: officer}) //nolint:exhaustruct // test
	_, err := store.Login(ctx, "officer", "secret")
	require.NoError(t, err)
	require.Equal(t, 3, storage.Keys())

	require.NoError(t, store.Logout(ctx))
	require.Zero(t, storage.Keys())
	_, ok := store.Current(ctx)
	require.False(t, ok)
}

func TestRehydrate(t *testing.T) {
	tests := []struct {
		name     string
		stored   map[string]string
		wantAuth bool
		wantKeys int
	}{
		{name: "empty storage", stored: nil, wantAuth: false, wantKeys: 0},
		{
			name: "complete session",
			stored: map[string]string{
				session.KeyAccessToken: "a1", session.KeyRefreshToken: "r1",
				session.KeyUser: `{"id":2,"username":"officer","role":"POLICE"}`,
			},
			wantAuth: true, wantKeys: 3,
		},
		{
			name:     "token without user",
			stored:   map[string]string{session.KeyAccessToken: "a1", session.KeyRefreshToken: "r1"},
			wantAuth: false, wantKeys: 0,
		},
		{
			name:     "user without token",
			stored:   map[string]string{session.KeyUser: `{"id":2,"username":"officer","role":"POLICE"}`},
			wantAuth: false, wantKeys: 0,
		},
		{
			name: "unparseable user",
			stored: map[string]string{
				session.KeyAccessToken: "a1", session.KeyRefreshToken: "r1", session.KeyUser: `{"id":`,
			},
			wantAuth: false, wantKeys: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			storage := session.NewMemoryStorage()
			for k, v := range tt.stored {
				require.NoError(t, storage.Put(ctx, k, v))
			}
			store := newStore(storage, fakeAuth{}) //nolint:exhaustruct // never called

			sess, ok := store.Rehydrate(ctx)
			require.Equal(t, tt.wantAuth, ok)
			require.Equal(t, tt.wantKeys, storage.Keys())
			if ok {
				require.Equal(t, models.RolePolice, sess.User.Role)
			}
		})
	}
}

func TestFileStorage(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "casectl", "session.json")
	store := newStore(session.NewFileStorage(path), fakeAuth{pair: models.TokenPair{Access: "a1"}, user: officer}) //nolint:exhaustruct // test

	_, err := store.Login(ctx, "officer", "secret")
	require.NoError(t, err)

	// A second storage on the same file sees the session.
	reopened := newStore(session.NewFileStorage(path), fakeAuth{}) //nolint:exhaustruct // never called
	sess, ok := reopened.Rehydrate(ctx)
	require.True(t, ok)
	require.Equal(t, "a1", sess.Token)
	require.Empty(t, sess.RefreshToken)

	require.NoError(t, reopened.Logout(ctx))
	_, ok = store.Current(ctx)
	require.False(t, ok)
}

func TestRoleHelpers(t *testing.T) {
	sess := models.Session{Token: "a", User: officer} //nolint:exhaustruct // test
	require.True(t, session.HasRole(sess, models.RolePolice))
	require.False(t, session.HasRole(sess, models.RoleAdmin))
	require.True(t, session.HasAnyRole(sess, models.RoleVolunteer, models.RolePolice))

	admin := models.Session{Token: "a", User: models.User{Username: "root", Role: models.RoleAdmin}} //nolint:exhaustruct // test
	require.True(t, session.HasAnyRole(admin))
}
