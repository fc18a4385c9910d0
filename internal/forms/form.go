// Package forms holds the state of the case registration forms and submits them to the case service.
package forms

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
)

// RedirectDelay is how long the success message stays up before returning to the dashboard.
const RedirectDelay = 2 * time.Second

var ErrUnknownField = errors.NewSentinel("unknown form field")

// ValidationError lists the fields that block submission, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Fields))
	return "invalid fields: " + strings.Join(names, ", ")
}

// Form is the mutable state of a registration form for cases of type T.
type Form[T any] struct {
	Title          string
	SuccessMessage string
	// FallbackMessage is shown when the case service gives no reason for a failure.
	FallbackMessage string

	Submitting  bool
	Success     bool
	Error       string
	FieldErrors map[string]string

	fields   []Field
	values   map[string]string
	newInput func() caseInput[T]
}

type (
	MissingPersonForm = Form[models.MissingPersonCase]
	FoundPersonForm   = Form[models.FoundPersonCase]
)

func NewMissingPersonForm() *MissingPersonForm {
	f := &MissingPersonForm{ //nolint:exhaustruct // state starts zero
		Title:           "Register Missing Person",
		SuccessMessage:  "Missing person registered successfully! Redirecting to dashboard...",
		FallbackMessage: "Failed to register missing person. Please try again.",
		fields:          missingPersonFields,
		newInput:        func() caseInput[models.MissingPersonCase] { return &missingPersonInput{} },
	}
	f.Reset()
	return f
}

func NewFoundPersonForm() *FoundPersonForm {
	f := &FoundPersonForm{ //nolint:exhaustruct // state starts zero
		Title:           "Register Found Person",
		SuccessMessage:  "Found person registered successfully! Redirecting to dashboard...",
		FallbackMessage: "Failed to register found person. Please try again.",
		fields:          foundPersonFields,
		newInput:        func() caseInput[models.FoundPersonCase] { return &foundPersonInput{} },
	}
	f.Reset()
	return f
}

func (f *Form[T]) Fields() []Field {
	return f.fields
}

// Sections returns the fields grouped by section, in order of appearance.
func (f *Form[T]) Sections() []Section {
	var sections []Section
	for _, field := range f.fields {
		if len(sections) == 0 || sections[len(sections)-1].Title != field.Section {
			sections = append(sections, Section{Title: field.Section, Fields: nil})
		}
		last := &sections[len(sections)-1]
		last.Fields = append(last.Fields, field)
	}
	return sections
}

type Section struct {
	Title  string
	Fields []Field
}

func (f *Form[T]) Value(name string) string {
	return f.values[name]
}

// Values returns a copy of the field record.
func (f *Form[T]) Values() map[string]string {
	return maps.Clone(f.values)
}

// Set updates a single field and leaves every other field as it is.
func (f *Form[T]) Set(name, value string) error {
	if _, ok := f.values[name]; !ok {
		return errors.Wrap(ErrUnknownField, "set field", slog.String("field", name))
	}
	f.values[name] = value
	return nil
}

// Reset seeds every field with the empty string.
func (f *Form[T]) Reset() {
	f.values = make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		f.values[field.Name] = ""
	}
	f.FieldErrors = nil
}

// Validate checks the record the way the inputs constrain it in the browser. Surrounding whitespace is
// ignored.
func (f *Form[T]) Validate() error {
	_, err := f.decode()
	return err
}

// Payload validates the record and converts it into the body expected by the case service.
func (f *Form[T]) Payload() (T, error) {
	in, err := f.decode()
	if err != nil {
		var zero T
		return zero, err
	}
	return in.toCase()
}

func (f *Form[T]) decode() (caseInput[T], error) {
	trimmed := make(map[string]string, len(f.values))
	for name, value := range f.values {
		trimmed[name] = strings.TrimSpace(value)
	}
	in := f.newInput()
	if err := mapstructure.Decode(trimmed, in); err != nil {
		return nil, errors.Wrap(err, "decode form", slog.String("form", f.Title))
	}

	f.FieldErrors = map[string]string{}
	err := validate.Struct(in)
	var invalid validator.ValidationErrors
	switch {
	case err == nil:
		return in, nil
	case errors.As(err, &invalid):
		for _, fe := range invalid {
			if _, seen := f.FieldErrors[fe.Field()]; !seen {
				f.FieldErrors[fe.Field()] = fieldMessage(f.field(fe.Field()), fe.Tag())
			}
		}
		return nil, &ValidationError{Fields: f.FieldErrors}
	default:
		return nil, errors.Wrap(err, "validate form", slog.String("form", f.Title))
	}
}

func (f *Form[T]) field(name string) Field {
	for _, field := range f.fields {
		if field.Name == name {
			return field
		}
	}
	return Field{Name: name, Label: name} //nolint:exhaustruct // only used for the message
}

// normalizeDate accepts a calendar date or an RFC 3339 timestamp and returns the calendar date in UTC.
func normalizeDate(value string) (string, error) {
	if d, err := time.Parse(time.DateOnly, value); err == nil {
		return d.Format(time.DateOnly), nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", errors.Wrap(err, "parse date", slog.String("value", value))
	}
	return ts.UTC().Format(time.DateOnly), nil
}

func parseAge(value string) (*int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, errors.Wrap(err, "parse age", slog.String("value", value))
	}
	return &n, nil
}
