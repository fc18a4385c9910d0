package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/justinas/nosurf"
	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/guard"
	"github.com/sangamsetu/casedesk/internal/logging"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/navigation"
	"github.com/sangamsetu/casedesk/internal/random"
)

const cspNonceLength = 24

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := random.Token(cspNonceLength)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r = contexthelpers.SetCSPNonce(r, nonce)

		w.Header().Set("Content-Security-Policy",
			fmt.Sprintf(`script-src 'nonce-%s' 'strict-dynamic' https: http:; object-src 'none'; base-uri 'none';`,
				nonce))
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

func cacheForeverHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		next.ServeHTTP(w, r)
	})
}

// requestID tags the request and every log record written while handling it.
func (app *application) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		r = contexthelpers.SetRequestID(r, id)
		r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("request_id", id)))
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b) //nolint:wrapcheck // transparent writer
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start  = time.Now()
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)
		rec := &statusRecorder{ResponseWriter: w, status: 0}
		next.ServeHTTP(rec, r)

		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "handled request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri),
			slog.Int("status", rec.status), slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.New("panic", slog.Any("recovered", err)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// restoreSession rehydrates the session from the session store before any guard runs.
func (app *application) restoreSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := app.sessions.Rehydrate(r.Context())
		if ok {
			r = contexthelpers.AuthenticateContext(r, sess)
			r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("username", sess.User.Username)))
		}
		next.ServeHTTP(w, r)
	})
}

// requireRoles admits signed in users with one of roles. No roles admits every signed in user.
func (app *application) requireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			switch guard.Evaluate(true, contexthelpers.Session(ctx), roles) {
			case guard.Authorized:
				next.ServeHTTP(w, r)
			case guard.Forbidden:
				app.logger.LogAttrs(ctx, slog.LevelInfo, "forbidden", slog.String("path", r.URL.Path))
				app.render(w, r, http.StatusForbidden, "forbidden", newBaseTemplateData(r))
			case guard.Loading, guard.Unauthenticated:
				navigation.ContextNavigator{}.Navigate(ctx, loginPath)
			}
		})
	}
}

// redirect navigates the browser to path. htmx requests get an HX-Redirect header because htmx does not
// follow redirects for the whole page.
func (app *application) redirect(w http.ResponseWriter, r *http.Request, path string) {
	h := app.htmx.NewHandler(w, r)
	if h.Request().HxRequest {
		h.Redirect(path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		r = contexthelpers.SetCSRFToken(r, nosurf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// noSurf implements CSRF protection using https://github.com/justinas/nosurf
func noSurf(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		csrfHandler := nosurf.New(next)
		csrfHandler.SetBaseCookie(http.Cookie{ //nolint:exhaustruct // only the security flags matter
			HttpOnly: true,
			Path:     "/",
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		return csrfHandler
	}
}
