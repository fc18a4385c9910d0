package devapi

import (
	"time"

	"github.com/sangamsetu/casedesk/internal/models"
)

// Seeded accounts. Passwords equal the username.
const (
	VolunteerUsername = "volunteer"
	PoliceUsername    = "officer"
	AdminUsername     = "admin"
)

func ptr[T any](v T) *T { return &v }

func (s *Server) seed() {
	created := time.Date(2024, time.March, 2, 9, 30, 0, 0, time.UTC)

	for _, u := range []models.User{
		{ID: 1, Username: VolunteerUsername, FirstName: "Asha", Email: "asha@example.org", Role: models.RoleVolunteer},
		{ID: 2, Username: PoliceUsername, FirstName: "Ravi", Email: "ravi@example.org", Role: models.RolePolice},
		{ID: 3, Username: AdminUsername, FirstName: "", Email: "admin@example.org", Role: models.RoleAdmin},
	} {
		s.accounts[u.Username] = newAccount(u.Username, u)
	}

	s.missing = []models.MissingPersonCase{
		{ //nolint:exhaustruct // optional fields
			ID: 1, Name: "Meera Patil", ApproxAge: ptr(72), Gender: string(models.GenderFemale),
			LastSeenLocation: "Ramkund ghat", LastSeenDate: "2024-03-01",
			Description: "Short grey hair, uses a walking stick", Clothing: "Green saree",
			ContactName: "Sunil Patil", ContactPhone: "+91 98220 00001", CreatedAt: &created,
		},
		{ //nolint:exhaustruct // optional fields
			ID: 2, Name: "Arjun Rao", ApproxAge: ptr(9), Gender: string(models.GenderMale),
			LastSeenLocation: "Sector 4 bus stand", LastSeenDate: "2024-03-02",
			Clothing: "Red t-shirt, blue shorts", ContactName: "Lata Rao", ContactPhone: "+91 98220 00002",
			CreatedAt: &created,
		},
	}
	s.found = []models.FoundPersonCase{
		{ //nolint:exhaustruct // optional fields
			ID: 11, ApproximateAge: ptr(70), Gender: string(models.GenderFemale),
			FoundLocation: "Panchavati police chowki", FoundDate: "2024-03-02",
			PhysicalDescription: "Elderly woman with walking stick", MentalState: string(models.MentalStateConfused),
			FinderName: "Constable Jadhav", FinderPhone: "100", CurrentLocation: "Civil hospital, ward 3",
			CreatedAt: &created,
		},
		{ //nolint:exhaustruct // optional fields
			ID: 12, ApproxAge: ptr(10), Gender: string(models.GenderMale),
			FoundLocation: "Tapovan", FinderContact: "Volunteer desk 7", CreatedAt: &created,
		},
	}
	rejectedAt := created.Add(2 * time.Hour) //nolint:mnd // fixture
	s.matches = []models.MatchSuggestion{
		{
			ID: 21, Confidence: 91, Status: models.MatchPending,
			MissingPerson: ptr(s.missing[0]), FoundPerson: ptr(s.found[0]),
			MatchReason: "Age, gender and clothing match", ConfirmedBy: "", ConfirmedAt: nil, CreatedAt: &created,
		},
		{
			ID: 22, Confidence: 64, Status: models.MatchPending,
			MissingPerson: ptr(s.missing[1]), FoundPerson: ptr(s.found[1]),
			MatchReason: "Age and gender match", ConfirmedBy: "", ConfirmedAt: nil, CreatedAt: &created,
		},
		{
			ID: 23, Confidence: 38, Status: models.MatchRejected,
			MissingPerson: ptr(s.missing[1]), FoundPerson: ptr(s.found[0]),
			MatchReason: "Found near last seen location", ConfirmedBy: PoliceUsername, ConfirmedAt: &rejectedAt,
			CreatedAt: &created,
		},
	}
}
