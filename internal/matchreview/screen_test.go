package matchreview_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	id     int64
	filter models.MatchFilter
}

type fakeService struct {
	mu      sync.Mutex
	calls   []call
	matches []models.MatchSuggestion
	failAct error
	// block, when set, holds Confirm until it is closed.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeService) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeService) List(_ context.Context, filter models.MatchFilter) (models.Page[models.MatchSuggestion], error) {
	f.record(call{method: "list", id: 0, filter: filter})
	var results []models.MatchSuggestion
	for _, m := range f.matches {
		if filter == models.FilterAll || string(m.Status) == string(filter) {
			results = append(results, m)
		}
	}
	return models.Page[models.MatchSuggestion]{Count: len(results), Next: nil, Previous: nil, Results: results}, nil
}

func (f *fakeService) Get(_ context.Context, id int64) (models.MatchSuggestion, error) {
	f.record(call{method: "get", id: id, filter: ""})
	for _, m := range f.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return models.MatchSuggestion{}, &api.Error{Status: 404} //nolint:exhaustruct // test
}

func (f *fakeService) Confirm(_ context.Context, id int64) error {
	f.record(call{method: "confirm", id: id, filter: ""})
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.failAct != nil {
		return f.failAct
	}
	f.setStatus(id, models.MatchConfirmed)
	return nil
}

func (f *fakeService) Reject(_ context.Context, id int64) error {
	f.record(call{method: "reject", id: id, filter: ""})
	if f.failAct != nil {
		return f.failAct
	}
	f.setStatus(id, models.MatchRejected)
	return nil
}

func (f *fakeService) setStatus(id int64, status models.MatchStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.matches {
		if f.matches[i].ID == id {
			f.matches[i].Status = status
		}
	}
}

func seeded() *fakeService {
	return &fakeService{ //nolint:exhaustruct // test
		matches: []models.MatchSuggestion{
			{ID: 1, Confidence: 91, Status: models.MatchPending},  //nolint:exhaustruct // test
			{ID: 2, Confidence: 64, Status: models.MatchPending},  //nolint:exhaustruct // test
			{ID: 3, Confidence: 40, Status: models.MatchRejected}, //nolint:exhaustruct // test
		},
	}
}

var (
	police    = &models.User{ID: 1, Username: "inspector", Role: models.RolePolice}     //nolint:exhaustruct // test
	volunteer = &models.User{ID: 2, Username: "helper", Role: models.RoleVolunteer}     //nolint:exhaustruct // test
	admin     = &models.User{ID: 3, Username: "coordinator", Role: models.RoleAdmin}    //nolint:exhaustruct // test
)

func newScreen(svc matchreview.Service) *matchreview.Screen {
	return matchreview.NewScreen(svc, testhelpers.NewLogger(io.Discard))
}

func TestLoad(t *testing.T) {
	svc := seeded()
	screen := newScreen(svc)

	view := screen.Load(t.Context(), police, models.FilterAll)
	require.Empty(t, view.Error)
	require.Len(t, view.Rows, 3)
	require.True(t, view.Rows[0].CanAct)
	require.False(t, view.Rows[2].CanAct, "finalized matches cannot be acted on")

	view = screen.Load(t.Context(), volunteer, models.FilterPending)
	require.Len(t, view.Rows, 2)
	for _, row := range view.Rows {
		require.False(t, row.CanAct)
	}
}

func TestConfirmPostsOnceAndReloadsWithSameFilter(t *testing.T) {
	svc := seeded()
	screen := newScreen(svc)

	view, err := screen.Confirm(t.Context(), police, 2, models.FilterPending)
	require.NoError(t, err)
	require.Equal(t, "Match confirmed", view.Notice)
	require.Equal(t, models.FilterPending, view.Filter)
	require.Len(t, view.Rows, 1)
	require.Equal(t, int64(1), view.Rows[0].ID)

	require.Equal(t, []call{
		{method: "get", id: 2, filter: ""},
		{method: "confirm", id: 2, filter: ""},
		{method: "list", id: 0, filter: models.FilterPending},
	}, svc.calls)
}

func TestRejectByAdmin(t *testing.T) {
	svc := seeded()
	view, err := newScreen(svc).Reject(t.Context(), admin, 1, models.FilterAll)
	require.NoError(t, err)
	require.Equal(t, "Match rejected", view.Notice)
	require.Equal(t, models.MatchRejected, view.Rows[0].Status)
	require.False(t, view.Rows[0].CanAct)
}

func TestFailedActionDoesNotReload(t *testing.T) {
	svc := seeded()
	svc.failAct = &api.Error{Status: 500} //nolint:exhaustruct // test
	screen := newScreen(svc)

	_, err := screen.Reject(t.Context(), police, 1, models.FilterAll)
	var actionErr *matchreview.ActionError
	require.True(t, errors.As(err, &actionErr))
	require.Equal(t, "Failed to reject match", actionErr.Message)
	require.Equal(t, []call{{method: "get", id: 1, filter: ""}, {method: "reject", id: 1, filter: ""}}, svc.calls)
	require.False(t, screen.Processing(1))
}

func TestFinalizedMatchIsNotSentAgain(t *testing.T) {
	svc := seeded()
	screen := newScreen(svc)

	_, err := screen.Confirm(t.Context(), police, 3, models.FilterAll)
	require.ErrorIs(t, err, matchreview.ErrAlreadyReviewed)
	var actionErr *matchreview.ActionError
	require.True(t, errors.As(err, &actionErr))
	require.Equal(t, "Failed to confirm match", actionErr.Message)
	require.Equal(t, []call{{method: "get", id: 3, filter: ""}}, svc.calls)
	require.False(t, screen.Processing(3))

	_, err = screen.Confirm(t.Context(), police, 2, models.FilterAll)
	require.NoError(t, err)
	_, err = screen.Reject(t.Context(), admin, 2, models.FilterAll)
	require.ErrorIs(t, err, matchreview.ErrAlreadyReviewed)
	require.Equal(t, models.MatchConfirmed, svc.matches[1].Status)
}

func TestMissingMatchFailsWithoutAction(t *testing.T) {
	svc := seeded()
	_, err := newScreen(svc).Reject(t.Context(), police, 99, models.FilterAll)
	var actionErr *matchreview.ActionError
	require.True(t, errors.As(err, &actionErr))
	require.Equal(t, []call{{method: "get", id: 99, filter: ""}}, svc.calls)
}

func TestVolunteerCannotAct(t *testing.T) {
	svc := seeded()
	_, err := newScreen(svc).Confirm(t.Context(), volunteer, 1, models.FilterAll)
	require.ErrorIs(t, err, matchreview.ErrNotPermitted)
	require.Empty(t, svc.calls)
}

func TestProcessingGuardIsPerMatch(t *testing.T) {
	svc := seeded()
	svc.block = make(chan struct{})
	svc.started = make(chan struct{})
	screen := newScreen(svc)

	done := make(chan error, 1)
	go func() {
		_, err := screen.Confirm(context.Background(), police, 1, models.FilterAll)
		done <- err
	}()
	<-svc.started
	require.True(t, screen.Processing(1))

	_, err := screen.Confirm(t.Context(), police, 1, models.FilterAll)
	require.ErrorIs(t, err, matchreview.ErrAlreadyProcessing)

	// A different match is not blocked.
	_, err = screen.Reject(t.Context(), police, 2, models.FilterAll)
	require.NoError(t, err)

	close(svc.block)
	require.NoError(t, <-done)
	require.False(t, screen.Processing(1))
}

func TestGet(t *testing.T) {
	screen := newScreen(seeded())
	row, err := screen.Get(t.Context(), admin, 2)
	require.NoError(t, err)
	require.True(t, row.CanAct)

	_, err = screen.Get(t.Context(), admin, 99)
	require.Error(t, err)
}

func TestActionPrompt(t *testing.T) {
	require.Equal(t, "Confirm this match?", matchreview.ActionConfirm.Prompt())
	require.Equal(t, "Reject this match?", matchreview.ActionReject.Prompt())
}
