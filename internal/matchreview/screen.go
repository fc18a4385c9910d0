// Package matchreview lists match suggestions and lets police and admins confirm or reject them.
package matchreview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
)

var (
	// ErrAlreadyProcessing is returned when an action on the same match is still in flight.
	ErrAlreadyProcessing = errors.NewSentinel("match is already being processed")
	ErrNotPermitted      = errors.NewSentinel("role may not review matches")
	// ErrAlreadyReviewed is returned when the match is already confirmed or rejected.
	ErrAlreadyReviewed = errors.NewSentinel("match has already been reviewed")
)

// Reviewers are the roles that may confirm or reject matches.
var Reviewers = []models.Role{models.RolePolice, models.RoleAdmin}

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
)

// Prompt is the question the user must answer before the action is carried out.
func (a Action) Prompt() string {
	if a == ActionReject {
		return "Reject this match?"
	}
	return "Confirm this match?"
}

func (a Action) doneMessage() string {
	if a == ActionReject {
		return "Match rejected"
	}
	return "Match confirmed"
}

func (a Action) failedMessage() string {
	if a == ActionReject {
		return "Failed to reject match"
	}
	return "Failed to confirm match"
}

const loadFailedMessage = "Failed to load match suggestions"

// Service is the part of the gateway the screen talks to.
type Service interface {
	List(ctx context.Context, filter models.MatchFilter) (models.Page[models.MatchSuggestion], error)
	Get(ctx context.Context, id int64) (models.MatchSuggestion, error)
	Confirm(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
}

// Row is a match together with what the viewing user may do with it.
type Row struct {
	models.MatchSuggestion
	CanAct     bool
	Processing bool
}

// View is what the screen renders.
type View struct {
	Filter models.MatchFilter
	Rows   []Row
	// Error is set when the list could not be loaded.
	Error string
	// Notice reports a completed action.
	Notice string
}

// Screen is shared by all requests. Its only state is the set of matches with an action in flight.
type Screen struct {
	service Service
	logger  *slog.Logger

	mu         sync.Mutex
	processing map[int64]struct{}
}

func NewScreen(service Service, logger *slog.Logger) *Screen {
	return &Screen{service: service, logger: logger, processing: map[int64]struct{}{}} //nolint:exhaustruct // zero mutex
}

// CanAct reports whether user may confirm or reject match.
func CanAct(user *models.User, match models.MatchSuggestion) bool {
	return models.HasAnyRole(user, Reviewers) && !match.Finalized()
}

// Load fetches the suggestions for filter. ALL sends no status to the service.
func (s *Screen) Load(ctx context.Context, user *models.User, filter models.MatchFilter) View {
	view := View{Filter: filter, Rows: nil, Error: "", Notice: ""}
	page, err := s.service.List(ctx, filter)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "load matches", slog.String("filter", string(filter)), errors.SlogError(err))
		view.Error = loadFailedMessage
		return view
	}
	view.Rows = make([]Row, 0, len(page.Results))
	for _, m := range page.Results {
		view.Rows = append(view.Rows, Row{MatchSuggestion: m, CanAct: CanAct(user, m), Processing: s.Processing(m.ID)})
	}
	return view
}

// Get fetches a single suggestion.
func (s *Screen) Get(ctx context.Context, user *models.User, id int64) (Row, error) {
	m, err := s.service.Get(ctx, id)
	if err != nil {
		return Row{}, errors.Wrap(err, "get match", slog.Int64("match_id", id))
	}
	return Row{MatchSuggestion: m, CanAct: CanAct(user, m), Processing: s.Processing(id)}, nil
}

// Processing reports whether an action on the match is in flight.
func (s *Screen) Processing(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processing[id]
	return ok
}

func (s *Screen) begin(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processing[id]; ok {
		return false
	}
	s.processing[id] = struct{}{}
	return true
}

func (s *Screen) end(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, id)
}

func (s *Screen) Confirm(ctx context.Context, user *models.User, id int64, filter models.MatchFilter) (View, error) {
	return s.Act(ctx, user, id, filter, ActionConfirm)
}

func (s *Screen) Reject(ctx context.Context, user *models.User, id int64, filter models.MatchFilter) (View, error) {
	return s.Act(ctx, user, id, filter, ActionReject)
}

// Act carries out action on the match and then reloads the list for filter, so that the view shows what
// the service now holds. On failure the list is not reloaded and the error message is returned for an alert.
// A finalized match is not sent to the service again.
func (s *Screen) Act(ctx context.Context, user *models.User, id int64, filter models.MatchFilter, action Action) (View, error) {
	attrs := []slog.Attr{slog.Int64("match_id", id), slog.String("action", string(action))}
	if !models.HasAnyRole(user, Reviewers) {
		return View{}, errors.Wrap(ErrNotPermitted, "review match", attrs...)
	}
	if !s.begin(id) {
		return View{}, errors.Wrap(ErrAlreadyProcessing, "review match", attrs...)
	}

	current, err := s.service.Get(ctx, id)
	switch {
	case err != nil:
		s.end(id)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "fetch match before review", append(attrs, errors.SlogError(err))...)
		return View{}, &ActionError{Message: action.failedMessage(), cause: err}
	case current.Finalized():
		s.end(id)
		return View{}, &ActionError{
			Message: action.failedMessage(),
			cause:   errors.Wrap(ErrAlreadyReviewed, "review match", append(attrs, slog.String("status", string(current.Status)))...),
		}
	}

	switch action {
	case ActionConfirm:
		err = s.service.Confirm(ctx, id)
	case ActionReject:
		err = s.service.Reject(ctx, id)
	default:
		err = errors.New("unknown action")
	}
	s.end(id)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "review match failed", append(attrs, errors.SlogError(err))...)
		return View{}, &ActionError{Message: action.failedMessage(), cause: err}
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "reviewed match", attrs...)

	view := s.Load(ctx, user, filter)
	view.Notice = action.doneMessage()
	return view, nil
}

// ActionError is a failed confirm or reject. Message is meant for a blocking alert.
type ActionError struct {
	Message string
	cause   error
}

func (e *ActionError) Error() string {
	return e.Message + ": " + e.cause.Error()
}

func (e *ActionError) Unwrap() error {
	return e.cause
}
