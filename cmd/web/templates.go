package main

import (
	"html/template"
	"log/slog"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/ui"
)

type BaseTemplateData struct {
	Authenticated bool
	User          *models.User
	CurrentPath   string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		User:          contexthelpers.User(ctx),
		CurrentPath:   contexthelpers.CurrentPath(ctx),
	}
}

// pageTemplate is the parsed template set of a page. The set is cloned for every render so that the
// request-scoped functions never leak between requests.
type pageTemplate struct {
	set *template.Template
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2 Jan 2006, 15:04")
}

// parseTemplates parses every page in ui/templates/pages together with the base layout and the partials.
//
// Each page has to define the templates "title" and "page".
func parseTemplates() (map[string]*pageTemplate, error) {
	pages, err := fs.Glob(ui.Files, "templates/pages/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "glob page templates")
	}
	templates := make(map[string]*pageTemplate, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".gohtml")
		// The request-scoped functions have to exist before parsing. They are replaced in render.
		t, parseErr := template.New(name).Funcs(template.FuncMap{
			"nonce":     func() template.HTMLAttr { panic("not implemented") },
			"csrf":      func() template.HTML { panic("not implemented") },
			"csrfToken": func() string { panic("not implemented") },
			"orNA":      models.OrNA,
			"date":      formatDate,
		}).ParseFS(ui.Files, "templates/base.gohtml", "templates/partials/*.gohtml", page)
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "parse page template", slog.String("page", name))
		}
		templates[name] = &pageTemplate{set: t}
	}
	return templates, nil
}
