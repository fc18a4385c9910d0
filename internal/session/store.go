// Package session keeps the authenticated identity and its credentials in durable storage.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
)

// Storage keys. They are always removed together.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

const loginFailedMessage = "Login failed. Please check your credentials."

// AuthenticationError is returned by [Store.Login] when either the credentials or the profile fetch fail.
type AuthenticationError struct {
	// Detail is the reason given by the server, if any.
	Detail string
	cause  error
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.cause.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.cause
}

// Message is shown to the user. It prefers the detail given by the server.
func (e *AuthenticationError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return loginFailedMessage
}

// Authenticator is the part of the gateway that the store needs.
type Authenticator interface {
	ObtainToken(ctx context.Context, username, password string) (models.TokenPair, error)
	Profile(ctx context.Context) (models.User, error)
}

// Store reads and writes the session. It holds no state of its own.
type Store struct {
	storage Storage
	auth    Authenticator
	logger  *slog.Logger
}

func NewStore(storage Storage, auth Authenticator, logger *slog.Logger) *Store {
	return &Store{storage: storage, auth: auth, logger: logger}
}

// Login obtains a token pair and then the profile of its user. The session is written only when both
// succeed, so a failed login leaves the previous session untouched.
func (s *Store) Login(ctx context.Context, username, password string) (models.Session, error) {
	var (
		pair models.TokenPair
		user models.User
		err  error
	)
	if pair, err = s.auth.ObtainToken(ctx, username, password); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "login rejected", slog.String("username", username), errors.SlogError(err))
		return models.Session{}, &AuthenticationError{Detail: detail(err), cause: err}
	}
	if user, err = s.auth.Profile(api.WithCredentials(ctx, pair.Access)); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "fetch profile after login", slog.String("username", username),
			errors.SlogError(err))
		return models.Session{}, &AuthenticationError{Detail: detail(err), cause: err}
	}

	sess := models.Session{Token: pair.Access, RefreshToken: pair.Refresh, User: user}
	if err = s.write(ctx, sess); err != nil {
		return models.Session{}, errors.Wrap(err, "persist session", slog.String("username", username))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "logged in",
		slog.String("username", user.Username), slog.String("role", string(user.Role)))
	return sess, nil
}

func detail(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

func (s *Store) write(ctx context.Context, sess models.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	// Clear first so that a refresh token from an earlier session never survives.
	if err = s.storage.Remove(ctx, allKeys...); err != nil {
		return errors.Wrap(err, "clear session")
	}
	if err = s.storage.Put(ctx, KeyAccessToken, sess.Token); err != nil {
		return errors.Wrap(err, "store access token")
	}
	if sess.RefreshToken != "" {
		if err = s.storage.Put(ctx, KeyRefreshToken, sess.RefreshToken); err != nil {
			return errors.Wrap(err, "store refresh token")
		}
	}
	if err = s.storage.Put(ctx, KeyUser, string(userJSON)); err != nil {
		return errors.Wrap(err, "store user")
	}
	return nil
}

// Logout removes every session key. It makes no network call.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Remove(ctx, allKeys...); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// Current returns the stored session when both the token and a parseable user are present.
func (s *Store) Current(ctx context.Context) (models.Session, bool) {
	sess, state := s.read(ctx)
	return sess, state == stateComplete
}

// Token returns the stored access token, or "".
func (s *Store) Token(ctx context.Context) string {
	token, _, err := s.storage.Get(ctx, KeyAccessToken)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "read access token", errors.SlogError(err))
		return ""
	}
	return token
}

// Rehydrate restores the session from storage. A partial or unparseable session is cleared entirely
// and reported as anonymous, never as half authenticated.
func (s *Store) Rehydrate(ctx context.Context) (models.Session, bool) {
	sess, state := s.read(ctx)
	if state == stateComplete {
		return sess, true
	}
	if state == stateCorrupt {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "clearing corrupt session")
		if err := s.Logout(ctx); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "clear corrupt session", errors.SlogError(err))
		}
	}
	return models.Session{}, false
}

type readState int

const (
	stateEmpty readState = iota
	stateComplete
	stateCorrupt
)

func (s *Store) read(ctx context.Context) (models.Session, readState) {
	token, hasToken, err := s.storage.Get(ctx, KeyAccessToken)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "read access token", errors.SlogError(err))
		return models.Session{}, stateCorrupt
	}
	userJSON, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "read user", errors.SlogError(err))
		return models.Session{}, stateCorrupt
	}
	hasToken = hasToken && token != ""
	hasUser = hasUser && userJSON != ""
	if !hasToken && !hasUser {
		return models.Session{}, stateEmpty
	}
	if !hasToken || !hasUser {
		return models.Session{}, stateCorrupt
	}

	var user models.User
	if err = json.Unmarshal([]byte(userJSON), &user); err != nil || user.Username == "" {
		return models.Session{}, stateCorrupt
	}
	refresh, _, _ := s.storage.Get(ctx, KeyRefreshToken)
	return models.Session{Token: token, RefreshToken: refresh, User: user}, stateComplete
}

// HasRole reports whether the user of sess holds role. ADMIN satisfies every role check.
func HasRole(sess models.Session, role models.Role) bool {
	return models.HasRole(&sess.User, role)
}

// HasAnyRole reports whether the user of sess holds one of roles. ADMIN satisfies every role check.
func HasAnyRole(sess models.Session, roles ...models.Role) bool {
	return models.HasAnyRole(&sess.User, roles)
}
