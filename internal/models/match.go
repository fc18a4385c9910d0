package models

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/sangamsetu/casedesk/internal/errors"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchConfirmed MatchStatus = "CONFIRMED"
	MatchRejected  MatchStatus = "REJECTED"
)

// MatchFilter selects which suggestions the review screen lists. FilterAll sends no status to the service.
type MatchFilter string

const (
	FilterAll       MatchFilter = "ALL"
	FilterPending   MatchFilter = MatchFilter(MatchPending)
	FilterConfirmed MatchFilter = MatchFilter(MatchConfirmed)
	FilterRejected  MatchFilter = MatchFilter(MatchRejected)
)

var MatchFilters = []MatchFilter{FilterAll, FilterPending, FilterConfirmed, FilterRejected}

// ParseMatchFilter returns FilterAll for empty or unknown values.
func ParseMatchFilter(s string) MatchFilter {
	for _, f := range MatchFilters {
		if string(f) == s {
			return f
		}
	}
	return FilterAll
}

// MatchSuggestion is a pairing of a missing and a found case proposed by the matching engine.
type MatchSuggestion struct {
	ID int64
	// Confidence is a percentage in the range 0–100.
	Confidence    int
	Status        MatchStatus
	MissingPerson *MissingPersonCase
	FoundPerson   *FoundPersonCase
	MatchReason   string
	ConfirmedBy   string
	ConfirmedAt   *time.Time
	CreatedAt     *time.Time
}

// Finalized reports whether the match has been confirmed or rejected.
func (m MatchSuggestion) Finalized() bool {
	return m.Status != MatchPending
}

// Tier returns the confidence tier of the match.
func (m MatchSuggestion) Tier() ConfidenceTier {
	return TierFor(m.Confidence)
}

type matchWire struct {
	ID              int64           `json:"id"`
	Confidence      *float64        `json:"confidence"`
	ConfidenceScore *float64        `json:"confidence_score"`
	Status          *MatchStatus    `json:"status"`
	IsConfirmed     *bool           `json:"is_confirmed"`
	MissingPerson   json.RawMessage `json:"missing_person"`
	FoundPerson     json.RawMessage `json:"found_person"`
	MatchReason     string          `json:"match_reason"`
	ConfirmedBy     json.RawMessage `json:"confirmed_by"`
	ConfirmedAt     *time.Time      `json:"confirmed_at"`
	CreatedAt       *time.Time      `json:"created_at"`
}

// UnmarshalJSON accepts both shapes the matching service is known to produce: a `confidence`
// fraction or a `confidence_score` percentage, and a `status` enum or an `is_confirmed` flag.
func (m *MatchSuggestion) UnmarshalJSON(data []byte) error {
	var (
		w   matchWire
		err error
	)
	if err = json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode match suggestion")
	}

	*m = MatchSuggestion{
		ID:          w.ID,
		Confidence:  normalizeConfidence(w.Confidence, w.ConfidenceScore),
		Status:      MatchPending,
		MatchReason: w.MatchReason,
		ConfirmedAt: w.ConfirmedAt,
		CreatedAt:   w.CreatedAt,
	}
	switch {
	case w.Status != nil && *w.Status != "":
		m.Status = *w.Status
	case w.IsConfirmed != nil && *w.IsConfirmed:
		m.Status = MatchConfirmed
	}

	if m.MissingPerson, err = decodeCaseRef[MissingPersonCase](w.MissingPerson, func(c *MissingPersonCase, id int64) {
		c.ID = id
	}); err != nil {
		return errors.Wrap(err, "decode missing person", slog.Int64("match_id", w.ID))
	}
	if m.FoundPerson, err = decodeCaseRef[FoundPersonCase](w.FoundPerson, func(c *FoundPersonCase, id int64) {
		c.ID = id
	}); err != nil {
		return errors.Wrap(err, "decode found person", slog.Int64("match_id", w.ID))
	}
	m.ConfirmedBy = decodeUserRef(w.ConfirmedBy)
	return nil
}

// MarshalJSON writes the status/confidence_score shape.
func (m MatchSuggestion) MarshalJSON() ([]byte, error) {
	score := float64(m.Confidence)
	status := m.Status
	var (
		confirmedBy json.RawMessage
		err         error
	)
	if m.ConfirmedBy != "" {
		if confirmedBy, err = json.Marshal(m.ConfirmedBy); err != nil {
			return nil, errors.Wrap(err, "encode confirmed_by")
		}
	}
	missing, err := json.Marshal(m.MissingPerson)
	if err != nil {
		return nil, errors.Wrap(err, "encode missing_person", slog.Int64("match_id", m.ID))
	}
	found, err := json.Marshal(m.FoundPerson)
	if err != nil {
		return nil, errors.Wrap(err, "encode found_person", slog.Int64("match_id", m.ID))
	}
	b, err := json.Marshal(matchWire{ //nolint:exhaustruct // alternate shape fields stay empty
		ID:              m.ID,
		ConfidenceScore: &score,
		Status:          &status,
		MissingPerson:   missing,
		FoundPerson:     found,
		MatchReason:     m.MatchReason,
		ConfirmedBy:     confirmedBy,
		ConfirmedAt:     m.ConfirmedAt,
		CreatedAt:       m.CreatedAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode match suggestion")
	}
	return b, nil
}

// normalizeConfidence converts to a rounded percentage. Fractions in `confidence` are scaled;
// a `confidence` above 1 is taken to already be a percentage.
func normalizeConfidence(fraction, score *float64) int {
	var pct float64
	switch {
	case score != nil:
		pct = *score
	case fraction != nil && *fraction <= 1:
		pct = *fraction * 100 //nolint:mnd // percent
	case fraction != nil:
		pct = *fraction
	}
	return int(math.Round(math.Max(0, math.Min(100, pct)))) //nolint:mnd // percent
}

// decodeCaseRef decodes a nested case object or a bare case id.
func decodeCaseRef[T any](raw json.RawMessage, setID func(*T, int64)) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil //nolint:nilnil // absent reference
	}
	var c T
	if raw[0] != '{' {
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse case id", slog.String("raw", string(raw)))
		}
		setID(&c, id)
		return &c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "decode case")
	}
	return &c, nil
}

// decodeUserRef renders confirmed_by, which is a username, a user id or a nested user.
func decodeUserRef(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var u User
	if err := json.Unmarshal(raw, &u); err == nil {
		return u.DisplayName()
	}
	return "user #" + string(raw)
}
