package forms

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sangamsetu/casedesk/internal/models"
)

// caseInput is the decoded field record of a form. The tags carry the same constraints as the inputs.
type caseInput[T any] interface {
	toCase() (T, error)
}

type missingPersonInput struct {
	Name             string `mapstructure:"name"               validate:"required"`
	Age              string `mapstructure:"age"                validate:"required,age"`
	Gender           string `mapstructure:"gender"             validate:"required,oneof=MALE FEMALE OTHER"`
	LastSeenDate     string `mapstructure:"last_seen_date"     validate:"required,calendardate"`
	LastSeenLocation string `mapstructure:"last_seen_location" validate:"required"`
	Description      string `mapstructure:"description"`
	Clothing         string `mapstructure:"clothing"`
	IdentifyingMarks string `mapstructure:"identifying_marks"`
	ContactName      string `mapstructure:"contact_name"       validate:"required"`
	ContactPhone     string `mapstructure:"contact_phone"      validate:"required"`
	ContactEmail     string `mapstructure:"contact_email"      validate:"omitempty,email"`
}

// toCase shapes the record for the case service, which expects the gender in lower case.
func (in *missingPersonInput) toCase() (models.MissingPersonCase, error) {
	age, err := parseAge(in.Age)
	if err != nil {
		return models.MissingPersonCase{}, err
	}
	lastSeen, err := normalizeDate(in.LastSeenDate)
	if err != nil {
		return models.MissingPersonCase{}, err
	}
	return models.MissingPersonCase{ //nolint:exhaustruct // id and timestamps are set by the case service
		Name:             in.Name,
		ApproxAge:        age,
		Gender:           strings.ToLower(in.Gender),
		LastSeenLocation: in.LastSeenLocation,
		LastSeenDate:     lastSeen,
		Description:      in.Description,
		Clothing:         in.Clothing,
		IdentifyingMarks: in.IdentifyingMarks,
		ContactName:      in.ContactName,
		ContactPhone:     in.ContactPhone,
		ContactEmail:     in.ContactEmail,
	}, nil
}

type foundPersonInput struct {
	ApproximateAge      string `mapstructure:"approximate_age"      validate:"required,age"`
	Gender              string `mapstructure:"gender"               validate:"required,oneof=MALE FEMALE OTHER"`
	FoundDate           string `mapstructure:"found_date"           validate:"required,calendardate"`
	MentalState         string `mapstructure:"mental_state"         validate:"omitempty,oneof=ALERT CONFUSED DISTRESSED UNCONSCIOUS INJURED"`
	FoundLocation       string `mapstructure:"found_location"       validate:"required"`
	CurrentLocation     string `mapstructure:"current_location"     validate:"required"`
	PhysicalDescription string `mapstructure:"physical_description"`
	ClothingDescription string `mapstructure:"clothing_description"`
	DistinctiveFeatures string `mapstructure:"distinctive_features"`
	FinderName          string `mapstructure:"finder_name"          validate:"required"`
	FinderPhone         string `mapstructure:"finder_phone"         validate:"required"`
	FinderEmail         string `mapstructure:"finder_email"         validate:"omitempty,email"`
}

func (in *foundPersonInput) toCase() (models.FoundPersonCase, error) {
	age, err := parseAge(in.ApproximateAge)
	if err != nil {
		return models.FoundPersonCase{}, err
	}
	found, err := normalizeDate(in.FoundDate)
	if err != nil {
		return models.FoundPersonCase{}, err
	}
	return models.FoundPersonCase{ //nolint:exhaustruct // id and timestamps are set by the case service
		ApproximateAge:      age,
		Gender:              in.Gender,
		FoundLocation:       in.FoundLocation,
		FoundDate:           found,
		PhysicalDescription: in.PhysicalDescription,
		ClothingDescription: in.ClothingDescription,
		DistinctiveFeatures: in.DistinctiveFeatures,
		MentalState:         in.MentalState,
		FinderName:          in.FinderName,
		FinderPhone:         in.FinderPhone,
		FinderEmail:         in.FinderEmail,
		CurrentLocation:     in.CurrentLocation,
	}, nil
}

var validate = newValidator()

// newValidator reports fields by their form name and knows the age and date formats of the forms.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	mustRegister(v, "age", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= minAge && n <= maxAge
	})
	mustRegister(v, "calendardate", func(fl validator.FieldLevel) bool {
		_, err := normalizeDate(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func fieldMessage(field Field, tag string) string {
	switch tag {
	case "required":
		return field.Label + " is required."
	case "age":
		return field.Label + " must be a whole number between 0 and 150."
	case "calendardate":
		return field.Label + " must be a date."
	case "oneof":
		return "Select a valid " + strings.ToLower(field.Label) + "."
	case "email":
		return "Enter a valid email address."
	}
	return field.Label + " is invalid."
}
