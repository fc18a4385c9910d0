package models_test

import (
	"encoding/json"
	"testing"

	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name  string
		role  models.Role
		roles []models.Role
		want  bool
	}{
		{name: "listed", role: models.RolePolice, roles: []models.Role{models.RolePolice, models.RoleAdmin}, want: true},
		{name: "not listed", role: models.RoleVolunteer, roles: []models.Role{models.RolePolice}, want: false},
		{name: "admin passes any list", role: models.RoleAdmin, roles: []models.Role{models.RoleVolunteer}, want: true},
		{name: "admin passes empty list", role: models.RoleAdmin, roles: nil, want: true},
		{name: "volunteer fails empty list", role: models.RoleVolunteer, roles: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{ID: 1, Username: "u", Role: tt.role}
			require.Equal(t, tt.want, models.HasAnyRole(user, tt.roles))
		})
	}
	require.False(t, models.HasAnyRole(nil, []models.Role{models.RoleVolunteer}))
	require.True(t, models.HasRole(&models.User{Role: models.RoleAdmin}, models.RolePolice))
}

func TestParseRole(t *testing.T) {
	r, ok := models.ParseRole(" police ")
	require.True(t, ok)
	require.Equal(t, models.RolePolice, r)
	_, ok = models.ParseRole("janitor")
	require.False(t, ok)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		percent int
		want    models.ConfidenceTier
	}{
		{percent: 100, want: models.ConfidenceHigh},
		{percent: 80, want: models.ConfidenceHigh},
		{percent: 79, want: models.ConfidenceMedium},
		{percent: 60, want: models.ConfidenceMedium},
		{percent: 59, want: models.ConfidenceLow},
		{percent: 0, want: models.ConfidenceLow},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, models.TierFor(tt.percent), "percent %d", tt.percent)
	}
	require.Equal(t, "confidence-medium", models.TierFor(79).CSSClass())
}

func TestMatchSuggestionDecodesBothShapes(t *testing.T) {
	t.Run("status and score", func(t *testing.T) {
		var m models.MatchSuggestion
		err := json.Unmarshal([]byte(`{
			"id": 3,
			"confidence_score": 79.4,
			"status": "REJECTED",
			"missing_person": {"id": 10, "name": "Asha", "approx_age": 12, "gender": "FEMALE"},
			"found_person": {"id": 20, "approximate_age": 11, "finder_contact": "Ravi"},
			"confirmed_by": {"id": 2, "username": "inspector"}
		}`), &m)
		require.NoError(t, err)
		require.Equal(t, int64(3), m.ID)
		require.Equal(t, 79, m.Confidence)
		require.Equal(t, models.ConfidenceMedium, m.Tier())
		require.Equal(t, models.MatchRejected, m.Status)
		require.True(t, m.Finalized())
		require.Equal(t, "Asha", m.MissingPerson.Name)
		require.Equal(t, 11, *m.FoundPerson.Age())
		require.Equal(t, "Ravi", m.FoundPerson.Contact())
		require.Equal(t, "inspector", m.ConfirmedBy)
	})

	t.Run("fraction and boolean", func(t *testing.T) {
		var m models.MatchSuggestion
		err := json.Unmarshal([]byte(`{
			"id": 4,
			"confidence": 0.86,
			"is_confirmed": true,
			"missing_person": 10,
			"found_person": 20,
			"confirmed_by": 7
		}`), &m)
		require.NoError(t, err)
		require.Equal(t, 86, m.Confidence)
		require.Equal(t, models.MatchConfirmed, m.Status)
		require.Equal(t, int64(10), m.MissingPerson.ID)
		require.Equal(t, int64(20), m.FoundPerson.ID)
		require.Equal(t, "user #7", m.ConfirmedBy)
	})

	t.Run("unconfirmed flag is pending", func(t *testing.T) {
		var m models.MatchSuggestion
		require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "confidence": 0.5, "is_confirmed": false}`), &m))
		require.Equal(t, models.MatchPending, m.Status)
		require.False(t, m.Finalized())
		require.Nil(t, m.MissingPerson)
	})
}

func TestMatchSuggestionRoundTripKeepsStatus(t *testing.T) {
	in := models.MatchSuggestion{ID: 9, Confidence: 64, Status: models.MatchPending, MatchReason: "same birthmark"}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(b), `"confidence_score":64`)

	var out models.MatchSuggestion
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in.Confidence, out.Confidence)
	require.Equal(t, in.Status, out.Status)
	require.Equal(t, in.MatchReason, out.MatchReason)
}

func TestMatchSuggestionRoundTripKeepsReferences(t *testing.T) {
	in := models.MatchSuggestion{ //nolint:exhaustruct // test
		ID:            4,
		Confidence:    88,
		Status:        models.MatchConfirmed,
		MissingPerson: &models.MissingPersonCase{ID: 11, Name: "Asha Devi"}, //nolint:exhaustruct // test
		FoundPerson:   &models.FoundPersonCase{ID: 12, FoundLocation: "Tapovan"}, //nolint:exhaustruct // test
		ConfirmedBy:   "inspector",
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out models.MatchSuggestion
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "Asha Devi", out.MissingPerson.Name)
	require.Equal(t, int64(12), out.FoundPerson.ID)
	require.Equal(t, "Tapovan", out.FoundPerson.FoundLocation)
	require.Equal(t, "inspector", out.ConfirmedBy)
}

func TestPageDecodesArrayAndEnvelope(t *testing.T) {
	var bare models.Page[models.MissingPersonCase]
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`), &bare))
	require.Equal(t, 2, bare.Count)
	require.Len(t, bare.Results, 2)

	var paged models.Page[models.MissingPersonCase]
	require.NoError(t, json.Unmarshal([]byte(`{"count": 40, "next": "/cases/missing/?page=2", "previous": null,
		"results": [{"id": 1, "name": "A"}]}`), &paged))
	require.Equal(t, 40, paged.Count)
	require.NotNil(t, paged.Next)
	require.Nil(t, paged.Previous)
	require.Equal(t, "A", paged.Results[0].Name)
}

func TestStatsEntries(t *testing.T) {
	var s models.Stats
	require.NoError(t, json.Unmarshal([]byte(`{"total_missing": 12, "match_rate": 0.25, "by_status": {"open": 3}}`), &s))
	entries := s.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, models.StatEntry{Key: "by_status", Label: "By status", Value: "Open: 3"}, entries[0])
	require.Equal(t, "0.25", entries[1].Value)
	require.Equal(t, "Total missing", entries[2].Label)
	require.Equal(t, "12", entries[2].Value)
}

func TestOrNA(t *testing.T) {
	age := 4
	require.Equal(t, "N/A", models.OrNA(""))
	require.Equal(t, "N/A", models.OrNA((*int)(nil)))
	require.Equal(t, "4", models.OrNA(&age))
	require.Equal(t, "Pune", models.OrNA("Pune"))
}
