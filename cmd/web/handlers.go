package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/ssr"
)

// render executes the page template named page with data into the "base" layout.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	app.execute(w, r, status, page, "base", data)
}

// renderFragment executes a single named template of page, for htmx to swap into the current document.
func (app *application) renderFragment(
	w http.ResponseWriter, r *http.Request, status int, page, name string, data any) {
	app.execute(w, r, status, page, name, data)
}

func (app *application) execute(w http.ResponseWriter, r *http.Request, status int, page, name string, data any) {
	var (
		err error
		t   *template.Template
	)
	pt, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, errors.New("page template not found", slog.String("template", page)))
		return
	}
	if t, err = pt.set.Clone(); err != nil {
		app.serverError(w, r, errors.Wrap(err, "clone template", slog.String("template", page)))
		return
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrfToken := contexthelpers.CSRFToken(ctx)
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", csrfToken)
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
		"csrfToken": func() string {
			return csrfToken
		},
	})

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", page),
			slog.String("name", name)))
		return
	}

	out := new(bytes.Buffer)
	if err = ssr.ReplaceCustomElements(out, buf, name != "base"); err != nil {
		app.serverError(w, r, errors.Wrap(err, "replace custom elements", slog.String("template", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = out.WriteTo(w)
}
