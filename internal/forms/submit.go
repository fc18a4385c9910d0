package forms

import (
	"context"
	"log/slog"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/navigation"
)

const (
	dashboardPath     = "/dashboard"
	invalidFieldsText = "Please correct the highlighted fields."
)

// Creator creates a case in the case service.
type Creator[T any] interface {
	Create(ctx context.Context, in T) (T, error)
}

// Submitter sends registration forms to the case service.
type Submitter[T any] struct {
	Creator   Creator[T]
	Navigator navigation.Navigator
	Logger    *slog.Logger
}

// Outcome of a submission. Redirect is the pending return to the dashboard after a success.
type Outcome[T any] struct {
	Created  T
	Redirect *navigation.Scheduled
	Err      error
}

// Submit validates f and creates the case. On success the fields are reset and a navigation to the
// dashboard is scheduled after RedirectDelay. On failure the fields keep what the user typed.
func (s Submitter[T]) Submit(ctx context.Context, f *Form[T]) Outcome[T] {
	var out Outcome[T]
	f.Error = ""
	f.Success = false
	f.Submitting = true
	defer func() {
		f.Submitting = false
	}()

	payload, err := f.Payload()
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			f.Error = invalidFieldsText
		} else {
			f.Error = f.FallbackMessage
		}
		out.Err = err
		return out
	}

	if out.Created, err = s.Creator.Create(ctx, payload); err != nil {
		s.Logger.LogAttrs(ctx, slog.LevelWarn, "register case", slog.String("form", f.Title), errors.SlogError(err))
		f.Error = api.UserMessage(err, f.FallbackMessage)
		out.Err = err
		return out
	}

	f.Success = true
	f.Reset()
	out.Redirect = s.Navigator.NavigateAfter(ctx, RedirectDelay, dashboardPath)
	s.Logger.LogAttrs(ctx, slog.LevelInfo, "registered case", slog.String("form", f.Title))
	return out
}
