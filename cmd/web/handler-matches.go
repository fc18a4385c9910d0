package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/navigation"
)

const (
	flashSessionKey      = "flash"
	alreadyProcessingMsg = "This match is already being processed."
	alreadyReviewedMsg   = "This match has already been reviewed."
)

// matchCard is a row of the review list together with the filter to return to after an action.
type matchCard struct {
	matchreview.Row
	Filter models.MatchFilter
}

type matchesTemplateData struct {
	BaseTemplateData
	Filter  models.MatchFilter
	Filters []models.MatchFilter
	Cards   []matchCard
	Error   string
	Notice  string
}

type matchActionTemplateData struct {
	BaseTemplateData
	Card        matchCard
	Filter      models.MatchFilter
	Action      matchreview.Action
	Prompt      string
	ActionLabel string
}

type alertTemplateData struct {
	BaseTemplateData
	Message   string
	BackPath  string
	BackLabel string
}

func matchesPath(filter models.MatchFilter) string {
	return "/matches?" + url.Values{"status": {string(filter)}}.Encode()
}

func (app *application) newMatchesTemplateData(r *http.Request, view matchreview.View) matchesTemplateData {
	data := matchesTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filter:           view.Filter,
		Filters:          models.MatchFilters,
		Cards:            make([]matchCard, 0, len(view.Rows)),
		Error:            view.Error,
		Notice:           view.Notice,
	}
	for _, row := range view.Rows {
		data.Cards = append(data.Cards, matchCard{Row: row, Filter: view.Filter})
	}
	return data
}

func (app *application) matchList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := models.ParseMatchFilter(r.URL.Query().Get("status"))
	view := app.matches.Load(ctx, contexthelpers.User(ctx), filter)
	view.Notice = app.sessionManager.PopString(ctx, flashSessionKey)
	app.render(w, r, http.StatusOK, "matches", app.newMatchesTemplateData(r, view))
}

func parseMatchRoute(r *http.Request) (int64, matchreview.Action, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, "", false
	}
	action := matchreview.Action(r.PathValue("action"))
	if action != matchreview.ActionConfirm && action != matchreview.ActionReject {
		return 0, "", false
	}
	return id, action, true
}

func actionLabel(action matchreview.Action) string {
	if action == matchreview.ActionReject {
		return "Reject"
	}
	return "Confirm"
}

// matchActionPage asks for confirmation before the action is carried out. htmx clients ask with
// hx-confirm instead and post directly.
func (app *application) matchActionPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, action, ok := parseMatchRoute(r)
	if !ok {
		app.notFound(w, r)
		return
	}
	filter := models.ParseMatchFilter(r.URL.Query().Get("status"))
	row, err := app.matches.Get(ctx, contexthelpers.User(ctx), id)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "load match for review", errors.SlogError(err))
		app.renderAlert(w, r, api.UserMessage(err, "Failed to load match suggestion"), filter)
		return
	}
	if !row.CanAct {
		app.renderAlert(w, r, alreadyReviewedMsg, filter)
		return
	}
	card := matchCard{Row: row, Filter: filter}
	// The card on this page only shows the match. The form below it carries out the action.
	card.CanAct = false
	app.render(w, r, http.StatusOK, "match-action", matchActionTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Card:             card,
		Filter:           filter,
		Action:           action,
		Prompt:           action.Prompt(),
		ActionLabel:      actionLabel(action),
	})
}

func (app *application) matchAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, action, ok := parseMatchRoute(r)
	if !ok {
		app.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	filter := models.ParseMatchFilter(r.PostForm.Get("status"))
	hx := app.htmx.NewHandler(w, r)

	view, err := app.matches.Act(ctx, contexthelpers.User(ctx), id, filter, action)
	if err != nil {
		message := alreadyProcessingMsg
		var actionErr *matchreview.ActionError
		switch {
		case errors.As(err, &actionErr):
			message = actionErr.Message
		case errors.Is(err, matchreview.ErrNotPermitted):
			app.render(w, r, http.StatusForbidden, "forbidden", newBaseTemplateData(r))
			return
		}
		if hx.Request().HxRequest {
			// The list stays as it is. Only the alert is swapped in.
			hx.ReTarget("#alert")
			hx.ReSwap("innerHTML")
			app.renderFragment(w, r, http.StatusOK, "alert", "alert-dialog", alertTemplateData{
				BaseTemplateData: newBaseTemplateData(r),
				Message:          message,
				BackPath:         matchesPath(filter),
				BackLabel:        "Back to matches",
			})
			return
		}
		app.renderAlert(w, r, message, filter)
		return
	}

	if hx.Request().HxRequest {
		app.renderFragment(w, r, http.StatusOK, "matches", "match-list", app.newMatchesTemplateData(r, view))
		return
	}
	app.sessionManager.Put(ctx, flashSessionKey, view.Notice)
	navigation.ContextNavigator{}.Navigate(ctx, matchesPath(filter))
}

func (app *application) renderAlert(w http.ResponseWriter, r *http.Request, message string, filter models.MatchFilter) {
	app.render(w, r, http.StatusOK, "alert", alertTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Message:          message,
		BackPath:         matchesPath(filter),
		BackLabel:        "Back to matches",
	})
}
