package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
)

const statsLoadFailedMsg = "Failed to load statistics"

var reportPeriods = []string{"all", "week", "month", "year"}

type statsTemplateData struct {
	BaseTemplateData
	Dashboard []models.StatEntry
	Reports   []models.StatEntry
	Period    string
	Periods   []string
	Error     string
}

func (app *application) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := r.URL.Query().Get("period")
	if !slices.Contains(reportPeriods, period) {
		period = reportPeriods[0]
	}
	data := statsTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Dashboard:        nil,
		Reports:          nil,
		Period:           period,
		Periods:          reportPeriods,
		Error:            "",
	}

	dashboard, err := app.api.Stats().Dashboard(ctx)
	if errors.Is(err, api.ErrSessionExpired) {
		// The session is already cleared and the login page is on its way.
		return
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "load dashboard stats", errors.SlogError(err))
		data.Error = api.UserMessage(err, statsLoadFailedMsg)
	}
	data.Dashboard = dashboard.Entries()

	var query url.Values
	if period != reportPeriods[0] {
		query = url.Values{"period": {period}}
	}
	reports, err := app.api.Stats().Reports(ctx, query)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "load reports", errors.SlogError(err))
		data.Error = api.UserMessage(err, statsLoadFailedMsg)
	}
	data.Reports = reports.Entries()

	app.render(w, r, http.StatusOK, "stats", data)
}
