package devapi

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sangamsetu/casedesk/internal/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *Server) issue(username, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{ //nolint:exhaustruct // unused claims stay empty
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.signingKey())
	if err != nil {
		return "", errors.Wrap(err, "sign token", slog.String("username", username))
	}
	return signed, nil
}

// verify returns the username the access token was issued to.
func (s *Server) verify(raw string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.signingKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}
	if c.TokenType != tokenTypeAccess {
		return "", errors.New("not an access token", slog.String("token_type", c.TokenType))
	}
	return c.Subject, nil
}

func (s *Server) signingKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret
}

// RevokeAll invalidates every token issued so far.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}
