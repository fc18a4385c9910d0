package main

import (
	"io/fs"
	"net/http"

	htmxmw "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/navigation"
	"github.com/sangamsetu/casedesk/ui"
)

var registrars = []models.Role{models.RoleVolunteer, models.RolePolice, models.RoleAdmin}

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))
	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(
		htmxmw.MiddleWare,
		app.sessionManager.LoadAndSave,
		noSurf(app.cfg.SecureCookies),
		commonContext,
		navigation.Middleware(app.redirect),
		app.restoreSession,
	)
	signedIn := session.Append(app.requireRoles())
	registrar := session.Append(app.requireRoles(registrars...))
	reviewer := session.Append(app.requireRoles(matchreview.Reviewers...))
	admin := session.Append(app.requireRoles(models.RoleAdmin))

	mux.Handle("GET /login", session.ThenFunc(app.loginPage))
	mux.Handle("POST /login", session.ThenFunc(app.login))
	mux.Handle("POST /logout", session.ThenFunc(app.logout))

	mux.Handle("GET /dashboard", signedIn.ThenFunc(app.dashboard))

	mux.Handle("GET /missing-person/register", registrar.ThenFunc(app.missingPersonPage))
	mux.Handle("POST /missing-person/register", registrar.ThenFunc(app.registerMissingPerson))
	mux.Handle("GET /found-person/register", registrar.ThenFunc(app.foundPersonPage))
	mux.Handle("POST /found-person/register", registrar.ThenFunc(app.registerFoundPerson))

	mux.Handle("GET /matches", reviewer.ThenFunc(app.matchList))
	mux.Handle("GET /matches/{id}/{action}", reviewer.ThenFunc(app.matchActionPage))
	mux.Handle("POST /matches/{id}/{action}", reviewer.ThenFunc(app.matchAction))

	mux.Handle("GET /stats", admin.ThenFunc(app.stats))

	mux.Handle("/", session.ThenFunc(app.fallback))

	return alice.New(app.recoverPanic, app.requestID, app.logRequest, secureHeaders).Then(mux)
}
