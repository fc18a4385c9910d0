package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/navigation"
	"github.com/sangamsetu/casedesk/internal/session"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

type loginTemplateData struct {
	BaseTemplateData
	Username string
	Error    string
}

func (app *application) loginPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if contexthelpers.IsAuthenticated(ctx) {
		navigation.ContextNavigator{}.Navigate(ctx, dashboardPath)
		return
	}
	app.render(w, r, http.StatusOK, "login", loginTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Username:         "",
		Error:            "",
	})
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	data := loginTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Username:         strings.TrimSpace(r.PostForm.Get("username")),
		Error:            "",
	}
	password := r.PostForm.Get("password")
	if data.Username == "" || password == "" {
		data.Error = "Please enter your username and password."
		app.render(w, r, app.formStatus(w, r), "login", data)
		return
	}

	// Renew the session token on privilege change to prevent session fixation.
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	if _, err := app.sessions.Login(ctx, data.Username, password); err != nil {
		var authErr *session.AuthenticationError
		if !errors.As(err, &authErr) {
			app.serverError(w, r, err)
			return
		}
		data.Error = authErr.Message()
		app.render(w, r, app.formStatus(w, r), "login", data)
		return
	}
	navigation.ContextNavigator{}.Navigate(ctx, dashboardPath)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.sessions.Logout(ctx); err != nil {
		app.serverError(w, r, err)
		return
	}
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	navigation.ContextNavigator{}.Navigate(ctx, loginPath)
}

// fallback sends unknown paths to the dashboard. The dashboard guard sends anonymous users on to the login.
func (app *application) fallback(_ http.ResponseWriter, r *http.Request) {
	navigation.ContextNavigator{}.Navigate(r.Context(), dashboardPath)
}

// accessToken is the token source of the case service client.
func (app *application) accessToken(ctx context.Context) string {
	return app.sessions.Token(ctx)
}

// sessionExpired runs when the case service rejects the session token. The session is cleared and the
// response is replaced with a redirect to the login page.
func (app *application) sessionExpired(ctx context.Context) {
	app.logger.LogAttrs(ctx, slog.LevelInfo, "session expired")
	if err := app.sessions.Logout(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "clear expired session", errors.SlogError(err))
	}
	navigation.ContextNavigator{}.Navigate(ctx, loginPath)
}
