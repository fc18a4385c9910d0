package models

import (
	"strconv"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// MentalState describes the condition of a found person at the time they were found.
type MentalState string

const (
	MentalStateAlert       MentalState = "ALERT"
	MentalStateConfused    MentalState = "CONFUSED"
	MentalStateDistressed  MentalState = "DISTRESSED"
	MentalStateUnconscious MentalState = "UNCONSCIOUS"
	MentalStateInjured     MentalState = "INJURED"
)

var MentalStates = []MentalState{
	MentalStateAlert, MentalStateConfused, MentalStateDistressed, MentalStateUnconscious, MentalStateInjured,
}

// MissingPersonCase is a report of a missing person. Identity and lifecycle are owned by the case service.
type MissingPersonCase struct {
	ID               int64      `json:"id,omitempty"`
	Name             string     `json:"name"`
	ApproxAge        *int       `json:"approx_age"`
	Gender           string     `json:"gender"`
	LastSeenLocation string     `json:"last_seen_location"`
	LastSeenDate     string     `json:"last_seen_date,omitempty"`
	Description      string     `json:"description"`
	Clothing         string     `json:"clothing"`
	IdentifyingMarks string     `json:"identifying_marks"`
	ContactName      string     `json:"contact_name"`
	ContactPhone     string     `json:"contact_phone"`
	ContactEmail     string     `json:"contact_email"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// FoundPersonCase is a report of a person found without identification.
//
// The case service has been seen returning both approximate_age and approx_age, and a single
// finder_contact instead of the separate finder fields. Read both and use the accessors.
type FoundPersonCase struct {
	ID                  int64      `json:"id,omitempty"`
	Name                string     `json:"name,omitempty"`
	ApproximateAge      *int       `json:"approximate_age,omitempty"`
	ApproxAge           *int       `json:"approx_age,omitempty"`
	Gender              string     `json:"gender"`
	FoundLocation       string     `json:"found_location"`
	FoundDate           string     `json:"found_date,omitempty"`
	PhysicalDescription string     `json:"physical_description"`
	ClothingDescription string     `json:"clothing_description"`
	DistinctiveFeatures string     `json:"distinctive_features"`
	MentalState         string     `json:"mental_state"`
	FinderName          string     `json:"finder_name"`
	FinderPhone         string     `json:"finder_phone"`
	FinderEmail         string     `json:"finder_email"`
	FinderContact       string     `json:"finder_contact,omitempty"`
	CurrentLocation     string     `json:"current_location"`
	Description         string     `json:"description,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
}

// Age returns whichever age field the case service populated.
func (f FoundPersonCase) Age() *int {
	if f.ApproximateAge != nil {
		return f.ApproximateAge
	}
	return f.ApproxAge
}

// Contact returns the finder contact as a single line.
func (f FoundPersonCase) Contact() string {
	if f.FinderContact != "" {
		return f.FinderContact
	}
	switch {
	case f.FinderName != "" && f.FinderPhone != "":
		return f.FinderName + ", " + f.FinderPhone
	case f.FinderPhone != "":
		return f.FinderPhone
	default:
		return f.FinderName
	}
}

// OrNA renders empty values as "N/A" for display.
func OrNA(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case *int:
		if t == nil {
			return "N/A"
		}
		return strconv.Itoa(*t)
	case int:
		return strconv.Itoa(t)
	case string:
		if t == "" {
			return "N/A"
		}
		return t
	default:
		return "N/A"
	}
}
