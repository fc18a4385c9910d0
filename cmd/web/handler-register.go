package main

import (
	"math"
	"net/http"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/forms"
	"github.com/sangamsetu/casedesk/internal/navigation"
)

const (
	missingPersonPath = "/missing-person/register"
	foundPersonPath   = "/found-person/register"
)

type formField struct {
	forms.Field
	Value string
	Error string
}

type formSection struct {
	Title  string
	Fields []formField
}

type registerTemplateData struct {
	BaseTemplateData
	Title           string
	Action          string
	SubmitLabel     string
	Sections        []formSection
	Error           string
	Success         bool
	SuccessMessage  string
	RedirectPath    string
	RedirectSeconds int
}

func newRegisterTemplateData[T any](
	r *http.Request, action, submitLabel string, f *forms.Form[T], redirect *navigation.Scheduled,
) registerTemplateData {
	data := registerTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Title:            f.Title,
		Action:           action,
		SubmitLabel:      submitLabel,
		Sections:         nil,
		Error:            f.Error,
		Success:          f.Success,
		SuccessMessage:   f.SuccessMessage,
		RedirectPath:     "",
		RedirectSeconds:  0,
	}
	for _, section := range f.Sections() {
		s := formSection{Title: section.Title, Fields: make([]formField, 0, len(section.Fields))}
		for _, field := range section.Fields {
			s.Fields = append(s.Fields, formField{
				Field: field,
				Value: f.Value(field.Name),
				Error: f.FieldErrors[field.Name],
			})
		}
		data.Sections = append(data.Sections, s)
	}
	if redirect != nil && !redirect.Cancelled() {
		data.RedirectPath = redirect.Path
		data.RedirectSeconds = int(math.Ceil(redirect.Delay.Seconds()))
	}
	return data
}

func (app *application) missingPersonPage(w http.ResponseWriter, r *http.Request) {
	f := forms.NewMissingPersonForm()
	app.render(w, r, http.StatusOK, "register",
		newRegisterTemplateData(r, missingPersonPath, "Register Missing Person", f, nil))
}

func (app *application) foundPersonPage(w http.ResponseWriter, r *http.Request) {
	f := forms.NewFoundPersonForm()
	app.render(w, r, http.StatusOK, "register",
		newRegisterTemplateData(r, foundPersonPath, "Register Found Person", f, nil))
}

func (app *application) registerMissingPerson(w http.ResponseWriter, r *http.Request) {
	f := forms.NewMissingPersonForm()
	registerCase(app, w, r, missingPersonPath, "Register Missing Person", f, app.api.MissingCases())
}

func (app *application) registerFoundPerson(w http.ResponseWriter, r *http.Request) {
	f := forms.NewFoundPersonForm()
	registerCase(app, w, r, foundPersonPath, "Register Found Person", f, app.api.FoundCases())
}

// registerCase copies the posted fields into f and submits it. Fields the form does not know are ignored.
func registerCase[T any](
	app *application, w http.ResponseWriter, r *http.Request,
	action, submitLabel string, f *forms.Form[T], creator api.Cases[T],
) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	for _, field := range f.Fields() {
		_ = f.Set(field.Name, r.PostForm.Get(field.Name))
	}

	submitter := forms.Submitter[T]{
		Creator:   creator,
		Navigator: navigation.ContextNavigator{},
		Logger:    app.logger,
	}
	outcome := submitter.Submit(r.Context(), f)
	status := http.StatusOK
	if outcome.Err != nil {
		status = app.formStatus(w, r)
	}
	app.render(w, r, status, "register", newRegisterTemplateData(r, action, submitLabel, f, outcome.Redirect))
}
