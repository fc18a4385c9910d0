package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sangamsetu/casedesk/internal/devapi"
	"github.com/sangamsetu/casedesk/internal/e2etest"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx := t.Context()

	// Anonymous users end up on the login page.
	doc := getDoc(t, client, "/dashboard")
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())
	require.Equal(t, 0, doc.Find("form[action='/logout']").Length())

	resp, err := client.PostForm(ctx, "/login", "/login",
		url.Values{"username": {devapi.PoliceUsername}, "password": {"wrong"}}, nil)
	require.NoError(t, err)
	doc = readDoc(t, resp, http.StatusUnprocessableEntity)
	require.Contains(t, doc.Find("[role=alert]").Text(), "No active account found with the given credentials")
	require.Equal(t, devapi.PoliceUsername, doc.Find("input[name=username]").AttrOr("value", ""))

	doc = server.login(t, client, devapi.PoliceUsername)
	require.Contains(t, doc.Find("h1").Text(), "Welcome, Ravi!")
	require.True(t, client.HasCookie("casedesk_session"))
	require.Contains(t, doc.Find(".navbar-user").Text(), "Ravi")

	// The login page sends signed in users to the dashboard.
	doc = getDoc(t, client, "/login")
	require.Contains(t, doc.Find("h1").Text(), "Welcome, Ravi!")

	doc, err = client.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())

	doc = getDoc(t, client, "/dashboard")
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())
}

func TestDashboardCardsFollowRole(t *testing.T) {
	server := startTestServer(t)
	tests := []struct {
		username  string
		wantCards []string
	}{
		{
			username:  devapi.VolunteerUsername,
			wantCards: []string{"/missing-person/register", "/found-person/register"},
		},
		{
			username:  devapi.PoliceUsername,
			wantCards: []string{"/missing-person/register", "/found-person/register", "/matches"},
		},
		{
			username:  devapi.AdminUsername,
			wantCards: []string{"/missing-person/register", "/found-person/register", "/matches", "/stats"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			client := server.newClient(t)
			doc := server.login(t, client, tt.username)
			var got []string
			doc.Find("a.action-card").Each(func(_ int, s *goquery.Selection) {
				got = append(got, s.AttrOr("href", ""))
			})
			require.Equal(t, tt.wantCards, got)
		})
	}
}

func TestRoleGuard(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.VolunteerUsername)

	for _, path := range []string{"/matches", "/stats"} {
		resp, err := client.Get(t.Context(), path)
		require.NoError(t, err)
		doc := readDoc(t, resp, http.StatusForbidden)
		require.Contains(t, doc.Text(), "Access Denied")
		require.Contains(t, doc.Text(), "Your role: VOLUNTEER")
		require.Equal(t, "/dashboard", doc.Find("a:contains('Go back')").AttrOr("href", ""))
	}
}

func TestRedirects(t *testing.T) {
	server := startTestServer(t)

	tests := []struct {
		path     string
		header   http.Header
		wantCode int
		wantLoc  string
		wantHx   string
	}{
		{path: "/", wantCode: http.StatusSeeOther, wantLoc: "/dashboard"},
		{path: "/no-such-page", wantCode: http.StatusSeeOther, wantLoc: "/dashboard"},
		{path: "/dashboard", wantCode: http.StatusSeeOther, wantLoc: "/login"},
		{path: "/matches", header: hxHeader, wantCode: http.StatusOK, wantHx: "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var (
				resp *http.Response
				err  error
			)
			if tt.header == nil {
				resp, err = server.Client().WithoutRedirects().Get(t.Context(), tt.path)
			} else {
				resp, err = getWithHeader(t, server, tt.path, tt.header)
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantCode, resp.StatusCode)
			require.Equal(t, tt.wantLoc, resp.Header.Get("Location"))
			require.Equal(t, tt.wantHx, resp.Header.Get("Hx-Redirect"))
		})
	}
}

func getWithHeader(t *testing.T, server *testServer, path string, header http.Header) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL()+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestSecureHeaders(t *testing.T) {
	server := startTestServer(t)
	resp, err := server.Client().Get(t.Context(), "/login")
	require.NoError(t, err)
	csp := resp.Header.Get("Content-Security-Policy")
	require.Equal(t, "deny", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	doc := readDoc(t, resp, http.StatusOK)
	nonce, ok := doc.Find("script").Attr("nonce")
	require.True(t, ok)
	require.Contains(t, csp, "'nonce-"+nonce+"'")
}

func TestSessionExpiry(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.PoliceUsername)

	server.dev.RevokeAll()
	doc := getDoc(t, client, "/matches")
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())

	// The stale session is gone, not only hidden.
	doc = getDoc(t, client, "/dashboard")
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())
}

func TestRegisterMissingPerson(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx := t.Context()
	server.login(t, client, devapi.VolunteerUsername)

	server.dev.ResetRequests()
	resp, err := client.PostForm(ctx, missingPersonPath, missingPersonPath, url.Values{"name": {"Kiran"}}, nil)
	require.NoError(t, err)
	doc := readDoc(t, resp, http.StatusUnprocessableEntity)
	require.Contains(t, doc.Find(".alert-error").Text(), "Please correct the highlighted fields.")
	require.Equal(t, "Kiran", doc.Find("input[name=name]").AttrOr("value", ""))
	require.Positive(t, doc.Find(".field-invalid").Length())
	require.Empty(t, resp.Header.Get("Refresh"))
	require.NotContains(t, server.dev.Requests(), "POST /api/cases/missing/")

	resp, err = client.PostForm(ctx, missingPersonPath, missingPersonPath, url.Values{
		"name":               {"Kiran Joshi"},
		"age":                {"34"},
		"gender":             {"MALE"},
		"last_seen_date":     {"2024-03-04"},
		"last_seen_location": {"Ram Ghat"},
		"contact_name":       {"Dev Joshi"},
		"contact_phone":      {"+91 98220 00003"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "2; url=/dashboard", resp.Header.Get("Refresh"))
	doc = readDoc(t, resp, http.StatusOK)
	require.Contains(t, doc.Find(".alert-success").Text(),
		"Missing person registered successfully! Redirecting to dashboard...")
	require.Empty(t, doc.Find("input[name=name]").AttrOr("value", ""))
	require.Contains(t, server.dev.Requests(), "POST /api/cases/missing/")
}

func TestRegisterFoundPersonWithHtmx(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.PoliceUsername)

	resp, err := client.PostForm(t.Context(), foundPersonPath, foundPersonPath, url.Values{
		"approximate_age":  {"60"},
		"gender":           {"FEMALE"},
		"found_date":       {"2024-03-04"},
		"found_location":   {"Tapovan"},
		"current_location": {"Help Center 2"},
		"finder_name":      {"Asha"},
		"finder_phone":     {"100"},
	}, hxHeader)
	require.NoError(t, err)
	doc := readDoc(t, resp, http.StatusOK)
	require.Contains(t, doc.Find(".alert-success").Text(), "Found person registered successfully!")
	redirect := doc.Find("[hx-trigger='load delay:2s']")
	require.Equal(t, "/dashboard", redirect.AttrOr("hx-get", ""))
}

func TestRegisterErrorsWithHtmxAreSwapped(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.PoliceUsername)

	resp, err := client.PostForm(t.Context(), foundPersonPath, foundPersonPath,
		url.Values{"approximate_age": {"200"}}, hxHeader)
	require.NoError(t, err)
	doc := readDoc(t, resp, http.StatusOK)
	require.Contains(t, doc.Find(".alert-error").Text(), "Please correct the highlighted fields.")
	require.Equal(t, "200", doc.Find("input[name=approximate_age]").AttrOr("value", ""))
}

func TestMatchReview(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx := t.Context()
	server.login(t, client, devapi.PoliceUsername)

	doc := getDoc(t, client, "/matches?status=PENDING")
	cards := doc.Find(".match-card")
	require.Equal(t, 2, cards.Length())
	require.True(t, cards.Eq(0).Find(".badge").First().HasClass("confidence-high"))
	require.True(t, cards.Eq(1).Find(".badge").First().HasClass("confidence-medium"))
	require.Equal(t, "Confirm this match?", cards.Eq(0).Find("a.btn-confirm").AttrOr("hx-confirm", ""))
	require.Equal(t, "PENDING", strings.TrimSpace(doc.Find("a.filter.active").Text()))

	server.dev.ResetRequests()
	resp, err := client.PostForm(ctx, "/matches/21/confirm?status=PENDING", "/matches/21/confirm",
		url.Values{"status": {"PENDING"}}, hxHeader)
	require.NoError(t, err)
	doc = readDoc(t, resp, http.StatusOK)
	// The first request comes from loading the confirmation page for its CSRF token. The second checks
	// that the match is still pending.
	require.Equal(t, []string{
		"GET /api/cases/matches/21/",
		"GET /api/cases/matches/21/",
		"POST /api/cases/matches/21/confirm/",
		"GET /api/cases/matches/?status=PENDING",
	}, server.dev.Requests())
	require.Contains(t, doc.Find("#match-list .alert-success").Text(), "Match confirmed")
	require.Equal(t, 1, doc.Find(".match-card").Length())
	require.Equal(t, 0, doc.Find("#match-21").Length())
}

func TestMatchReviewWithoutJavaScript(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.AdminUsername)

	doc := getDoc(t, client, "/matches/22/reject?status=ALL")
	require.Contains(t, doc.Find("h1").Text(), "Reject this match?")

	doc, err := client.SubmitForm(t.Context(), "/matches/22/reject?status=ALL", "/matches/22/reject",
		url.Values{"status": {"ALL"}})
	require.NoError(t, err)
	require.Contains(t, doc.Find(".alert-success").Text(), "Match rejected")
	require.Contains(t, doc.Find("#match-22 .badge.status-rejected").Text(), "REJECTED")
	require.Contains(t, doc.Find("#match-22 .match-reviewed").Text(), "Reviewed by admin")

	// The flash is shown once.
	doc = getDoc(t, client, "/matches?status=ALL")
	require.Equal(t, 0, doc.Find(".alert-success").Length())
}

func TestMatchReviewFailureKeepsList(t *testing.T) {
	server := startTestServer(t)
	police := server.Client()
	admin := server.newClient(t)
	ctx := t.Context()
	server.login(t, police, devapi.PoliceUsername)
	server.login(t, admin, devapi.AdminUsername)

	doc := getDoc(t, police, "/matches/22/reject?status=PENDING")
	token, err := e2etest.ExtractCSRFToken(doc, "/matches/22/reject")
	require.NoError(t, err)

	// Someone else reviews the match in the meantime.
	_, err = admin.SubmitForm(ctx, "/matches/22/confirm?status=PENDING", "/matches/22/confirm",
		url.Values{"status": {"PENDING"}})
	require.NoError(t, err)

	server.dev.ResetRequests()
	resp, err := police.Post(ctx, "/matches/22/reject",
		url.Values{"status": {"PENDING"}, "csrf_token": {token}}, hxHeader)
	require.NoError(t, err)
	require.Equal(t, "#alert", resp.Header.Get("Hx-Retarget"))
	doc = readDoc(t, resp, http.StatusOK)
	require.Contains(t, doc.Find("dialog").Text(), "Failed to reject match")
	// The match is already confirmed, so the rejection is never sent.
	require.Equal(t, []string{"GET /api/cases/matches/22/"}, server.dev.Requests())
}

func TestStats(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.AdminUsername)

	doc := getDoc(t, client, "/stats?period=month")
	require.Equal(t, 0, doc.Find(".alert-error").Length())
	require.Equal(t, "3", doc.Find(".stats-dashboard dt:contains('Total matches')").Next().Text())
	require.Equal(t, "month", doc.Find(".stats-reports dt:contains('Period')").Next().Text())
}

func TestStatsSessionExpiryStopsLoading(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	server.login(t, client, devapi.AdminUsername)

	server.dev.RevokeAll()
	server.dev.ResetRequests()
	doc := getDoc(t, client, "/stats?period=week")
	require.Equal(t, 1, doc.Find("form[action='/login']").Length())
	require.Equal(t, []string{"GET /api/stats/dashboard/"}, server.dev.Requests())
}
