// Package devapi is an in-memory stand-in for the case service, for local development and tests.
// Match suggestions are fixtures; nothing is matched.
package devapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sangamsetu/casedesk/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Account is a user that can obtain tokens.
type Account struct {
	PasswordHash []byte
	User         models.User
}

// newAccount hashes password with the lowest bcrypt cost. The accounts are throwaway fixtures.
func newAccount(password string, user models.User) Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		// Only passwords longer than 72 bytes fail.
		panic(err)
	}
	return Account{PasswordHash: hash, User: user}
}

func (a Account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) == nil
}

type Server struct {
	logger    *slog.Logger
	accessTTL time.Duration
	now       func() time.Time

	mu       sync.Mutex
	secret   []byte
	accounts map[string]Account
	missing  []models.MissingPersonCase
	found    []models.FoundPersonCase
	matches  []models.MatchSuggestion
	nextID   int64
	requests []string
}

type Option func(*Server)

// WithAccessTTL sets the lifetime of access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) { s.accessTTL = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(logger *slog.Logger, opts ...Option) *Server {
	s := &Server{ //nolint:exhaustruct // seeded below
		logger:    logger,
		accessTTL: 30 * time.Minute, //nolint:mnd // 30 minutes
		now:       time.Now,
		secret:    []byte(uuid.NewString()),
		accounts:  map[string]Account{},
		nextID:    100, //nolint:mnd // leave room for fixtures
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	return s
}

// AddAccount registers a user that can log in with password.
func (s *Server) AddAccount(password string, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Username] = newAccount(password, user)
}

// Requests returns "METHOD path?query" for every request received, oldest first.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		s.mu.Lock()
		s.requests = append(s.requests, line)
		s.mu.Unlock()
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "dev api request", slog.String("request", line))
		next.ServeHTTP(w, r)
	})
}

// Handler serves the API below /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/token/", s.obtainToken)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/accounts/profile/", s.profile)

			r.Get("/cases/missing/", s.listMissing)
			r.Post("/cases/missing/", s.createMissing)
			r.Get("/cases/missing/{id}/", s.getMissing)
			r.Put("/cases/missing/{id}/", s.updateMissing)
			r.Delete("/cases/missing/{id}/", s.deleteMissing)

			r.Get("/cases/found/", s.listFound)
			r.Post("/cases/found/", s.createFound)
			r.Get("/cases/found/{id}/", s.getFound)
			r.Put("/cases/found/{id}/", s.updateFound)
			r.Delete("/cases/found/{id}/", s.deleteFound)

			r.Get("/cases/matches/", s.listMatches)
			r.Get("/cases/matches/{id}/", s.getMatch)
			r.Post("/cases/matches/{id}/confirm/", s.reviewMatch(models.MatchConfirmed))
			r.Post("/cases/matches/{id}/reject/", s.reviewMatch(models.MatchRejected))

			r.Get("/stats/dashboard/", s.requireAdmin(s.dashboardStats))
			r.Get("/stats/reports/", s.requireAdmin(s.reports))
		})
	})
	return r
}

type contextKey string

const userContextKey = contextKey("user")

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		username, err := s.verify(raw)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		s.mu.Lock()
		account, exists := s.accounts[username]
		s.mu.Unlock()
		if !exists {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), account.User)))
	})
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()).Role != models.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
