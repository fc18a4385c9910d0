package main

import (
	"net/http"

	"github.com/sangamsetu/casedesk/internal/contexthelpers"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/models"
)

type dashboardCard struct {
	Title       string
	Description string
	Path        string
	roles       []models.Role
}

var dashboardCards = []dashboardCard{
	{
		Title: "Register Missing Person", Description: "Report a new missing person case",
		Path: "/missing-person/register", roles: registrars,
	},
	{
		Title: "Register Found Person", Description: "Report a found person",
		Path: "/found-person/register", roles: registrars,
	},
	{
		Title: "Match Suggestions", Description: "Review suggested matches",
		Path: "/matches", roles: matchreview.Reviewers,
	},
	{
		Title: "Statistics", Description: "Case and match statistics",
		Path: "/stats", roles: []models.Role{models.RoleAdmin},
	},
}

type dashboardTemplateData struct {
	BaseTemplateData
	Cards []dashboardCard
}

func (app *application) dashboard(w http.ResponseWriter, r *http.Request) {
	user := contexthelpers.User(r.Context())
	var cards []dashboardCard
	for _, card := range dashboardCards {
		if models.HasAnyRole(user, card.roles) {
			cards = append(cards, card)
		}
	}
	app.render(w, r, http.StatusOK, "dashboard", dashboardTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Cards:            cards,
	})
}
