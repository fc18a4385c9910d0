package forms_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/forms"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/navigation"
	"github.com/sangamsetu/casedesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type fakeCreator[T any] struct {
	calls int
	got   T
	err   error
}

func (f *fakeCreator[T]) Create(_ context.Context, in T) (T, error) {
	f.calls++
	f.got = in
	return in, f.err
}

func fillMissing(t *testing.T, f *forms.MissingPersonForm) {
	t.Helper()
	for name, value := range map[string]string{
		"name":               "Asha Devi",
		"age":                "12",
		"gender":             "FEMALE",
		"last_seen_date":     "2028-04-02",
		"last_seen_location": "Ram Ghat",
		"contact_name":       "Ravi",
		"contact_phone":      "9876543210",
	} {
		require.NoError(t, f.Set(name, value))
	}
}

func fillFound(t *testing.T, f *forms.FoundPersonForm) {
	t.Helper()
	for name, value := range map[string]string{
		"approximate_age":  "70",
		"gender":           "MALE",
		"found_date":       "2028-04-03T22:30:00-02:00",
		"found_location":   "Sector 5",
		"current_location": "Help Center 2",
		"finder_name":      "Volunteer",
		"finder_phone":     "9000000000",
	} {
		require.NoError(t, f.Set(name, value))
	}
}

func TestSetIsFieldScoped(t *testing.T) {
	f := forms.NewMissingPersonForm()
	require.NoError(t, f.Set("name", "Asha"))
	require.NoError(t, f.Set("age", "12"))
	require.NoError(t, f.Set("name", "Asha Devi"))

	values := f.Values()
	require.Equal(t, "Asha Devi", values["name"])
	require.Equal(t, "12", values["age"])
	require.Empty(t, values["gender"])
	require.Len(t, values, len(f.Fields()))

	require.ErrorIs(t, f.Set("password", "x"), forms.ErrUnknownField)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		wantError bool
	}{
		{name: "age above bound", field: "age", value: "151", wantError: true},
		{name: "age below bound", field: "age", value: "-1", wantError: true},
		{name: "age upper bound", field: "age", value: "150", wantError: false},
		{name: "age not a number", field: "age", value: "twelve", wantError: true},
		{name: "gender outside enum", field: "gender", value: "UNKNOWN", wantError: true},
		{name: "malformed date", field: "last_seen_date", value: "02/04/2028", wantError: true},
		{name: "timestamp date", field: "last_seen_date", value: "2028-04-02T10:00:00Z", wantError: false},
		{name: "bad email", field: "contact_email", value: "ravi@", wantError: true},
		{name: "missing required", field: "contact_phone", value: "", wantError: true},
		{name: "optional empty", field: "clothing", value: "", wantError: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := forms.NewMissingPersonForm()
			fillMissing(t, f)
			require.NoError(t, f.Set(tt.field, tt.value))

			err := f.Validate()
			if !tt.wantError {
				require.NoError(t, err)
				return
			}
			var validationErr *forms.ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.Contains(t, validationErr.Fields, tt.field)
			require.Len(t, validationErr.Fields, 1)
		})
	}
}

func TestValidationMessages(t *testing.T) {
	f := forms.NewFoundPersonForm()
	fillFound(t, f)
	require.NoError(t, f.Set("approximate_age", "200"))
	require.NoError(t, f.Set("mental_state", "SLEEPY"))
	require.NoError(t, f.Set("finder_email", "nobody"))
	require.NoError(t, f.Set("finder_name", "   "))
	require.NoError(t, f.Set("found_date", "yesterday"))

	require.Error(t, f.Validate())
	require.Equal(t, map[string]string{
		"approximate_age": "Approximate Age must be a whole number between 0 and 150.",
		"mental_state":    "Select a valid mental state.",
		"finder_email":    "Enter a valid email address.",
		"finder_name":     "Your Name is required.",
		"found_date":      "Found Date must be a date.",
	}, f.FieldErrors)

	fillFound(t, f)
	require.NoError(t, f.Set("mental_state", "CONFUSED"))
	require.NoError(t, f.Set("finder_email", ""))
	require.NoError(t, f.Validate())
	require.Empty(t, f.FieldErrors)
}

func TestPayloadTrimsValues(t *testing.T) {
	f := forms.NewMissingPersonForm()
	fillMissing(t, f)
	require.NoError(t, f.Set("name", "  Asha Devi "))
	require.NoError(t, f.Set("age", " 12 "))

	payload, err := f.Payload()
	require.NoError(t, err)
	require.Equal(t, "Asha Devi", payload.Name)
	require.Equal(t, 12, *payload.ApproxAge)
}

func TestMissingPersonPayload(t *testing.T) {
	f := forms.NewMissingPersonForm()
	fillMissing(t, f)
	require.NoError(t, f.Set("last_seen_date", "2028-04-02T23:30:00+05:30"))

	payload, err := f.Payload()
	require.NoError(t, err)
	b, err := json.Marshal(payload)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	require.Equal(t, 12.0, body["approx_age"])
	require.NotContains(t, body, "age")
	require.Equal(t, "female", body["gender"])
	require.Equal(t, "2028-04-02", body["last_seen_date"])
	require.Equal(t, "", body["contact_email"])
}

func TestFoundPersonPayload(t *testing.T) {
	f := forms.NewFoundPersonForm()
	fillFound(t, f)

	payload, err := f.Payload()
	require.NoError(t, err)
	b, err := json.Marshal(payload)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	require.Equal(t, 70.0, body["approximate_age"])
	require.NotContains(t, body, "approx_age")
	require.Equal(t, "MALE", body["gender"])
	// 22:30 at UTC-2 is the next day in UTC.
	require.Equal(t, "2028-04-04", body["found_date"])
	require.Equal(t, "", body["mental_state"])
}

func newSubmitter[T any](creator forms.Creator[T], nav navigation.Navigator) forms.Submitter[T] {
	return forms.Submitter[T]{Creator: creator, Navigator: nav, Logger: testhelpers.NewLogger(io.Discard)}
}

func TestSubmitSuccess(t *testing.T) {
	visited := make(chan time.Time, 1)
	nav := navigation.Timer{OnNavigate: func(path string) {
		if path == "/dashboard" {
			visited <- time.Now()
		}
	}}
	creator := &fakeCreator[models.MissingPersonCase]{} //nolint:exhaustruct // test
	f := forms.NewMissingPersonForm()
	fillMissing(t, f)

	submitted := time.Now()
	out := newSubmitter[models.MissingPersonCase](creator, nav).Submit(t.Context(), f)

	require.NoError(t, out.Err)
	require.True(t, f.Success)
	require.False(t, f.Submitting)
	require.Empty(t, f.Error)
	require.Equal(t, 1, creator.calls)
	for _, value := range f.Values() {
		require.Empty(t, value)
	}
	require.NotNil(t, out.Redirect)
	require.False(t, out.Redirect.Fired())

	select {
	case at := <-visited:
		require.GreaterOrEqual(t, at.Sub(submitted), forms.RedirectDelay)
	case <-time.After(forms.RedirectDelay + time.Second):
		t.Fatal("no navigation to the dashboard")
	}
}

func TestSubmitServerFailureKeepsFields(t *testing.T) {
	creator := &fakeCreator[models.FoundPersonCase]{ //nolint:exhaustruct // test
		err: errors.Wrap(&api.Error{Status: 400, Detail: "Found date cannot be in the future"}, "create case"), //nolint:exhaustruct // test
	}
	nav := navigation.Timer{OnNavigate: func(string) { t.Error("navigated after a failure") }}
	f := forms.NewFoundPersonForm()
	fillFound(t, f)

	out := newSubmitter[models.FoundPersonCase](creator, nav).Submit(t.Context(), f)

	require.Error(t, out.Err)
	require.Nil(t, out.Redirect)
	require.False(t, f.Success)
	require.False(t, f.Submitting)
	require.Equal(t, "Found date cannot be in the future", f.Error)
	require.Equal(t, "70", f.Value("approximate_age"))
}

func TestSubmitFailureFallsBackToStaticMessage(t *testing.T) {
	creator := &fakeCreator[models.MissingPersonCase]{err: errors.New("connection reset")} //nolint:exhaustruct // test
	f := forms.NewMissingPersonForm()
	fillMissing(t, f)

	out := newSubmitter[models.MissingPersonCase](creator, navigation.ContextNavigator{}).Submit(t.Context(), f)

	require.Error(t, out.Err)
	require.Equal(t, "Failed to register missing person. Please try again.", f.Error)
	require.Equal(t, "Asha Devi", f.Value("name"))
}

func TestSubmitInvalidMakesNoCall(t *testing.T) {
	creator := &fakeCreator[models.MissingPersonCase]{} //nolint:exhaustruct // test
	f := forms.NewMissingPersonForm()
	fillMissing(t, f)
	require.NoError(t, f.Set("age", "200"))

	out := newSubmitter[models.MissingPersonCase](creator, navigation.ContextNavigator{}).Submit(t.Context(), f)

	var validationErr *forms.ValidationError
	require.True(t, errors.As(out.Err, &validationErr))
	require.Zero(t, creator.calls)
	require.Contains(t, f.FieldErrors, "age")
	require.Equal(t, "200", f.Value("age"))
}

func TestSections(t *testing.T) {
	sections := forms.NewFoundPersonForm().Sections()
	require.Len(t, sections, 4)
	require.Equal(t, "Person Details", sections[0].Title)
	require.Equal(t, "Finder Information", sections[3].Title)
}
