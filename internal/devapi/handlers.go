package devapi

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sangamsetu/casedesk/internal/models"
)

const pageSize = 20

func withUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func userFrom(ctx context.Context) models.User {
	u, _ := ctx.Value(userContextKey).(models.User)
	return u
}

func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	s.mu.Lock()
	account, ok := s.accounts[creds.Username]
	s.mu.Unlock()
	if !ok || !account.checkPassword(creds.Password) {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.issue(creds.Username, tokenTypeAccess, s.accessTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token.")
		return
	}
	refresh, err := s.issue(creds.Username, tokenTypeRefresh, 24*time.Hour) //nolint:mnd // one day
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token.")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func paginate[T any](r *http.Request, items []T) models.Page[T] {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	start := min((page-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))
	p := models.Page[T]{Count: len(items), Next: nil, Previous: nil, Results: items[start:end]}
	if end < len(items) {
		next := r.URL.Path + "?page=" + strconv.Itoa(page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := r.URL.Path + "?page=" + strconv.Itoa(page-1)
		p.Previous = &prev
	}
	return p
}

func required(fields map[string]string) map[string][]string {
	errs := map[string][]string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			errs[name] = []string{"This field is required."}
		}
	}
	return errs
}

func (s *Server) listMissing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.missing)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, items))
}

func decodeMissing(w http.ResponseWriter, r *http.Request) (models.MissingPersonCase, bool) {
	var c models.MissingPersonCase
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return c, false
	}
	errs := required(map[string]string{
		"name":               c.Name,
		"last_seen_location": c.LastSeenLocation,
		"contact_name":       c.ContactName,
		"contact_phone":      c.ContactPhone,
	})
	if c.ApproxAge == nil {
		errs["approx_age"] = []string{"This field is required."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return c, false
	}
	return c, true
}

func (s *Server) createMissing(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeMissing(w, r)
	if !ok {
		return
	}
	now := s.now().UTC()
	s.mu.Lock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = &now
	s.missing = append(s.missing, c)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getMissing(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.missing, func(c models.MissingPersonCase) bool { return c.ID == id })
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.missing[i])
}

func (s *Server) updateMissing(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	c, ok := decodeMissing(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.missing, func(c models.MissingPersonCase) bool { return c.ID == id })
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	c.ID, c.CreatedAt = id, s.missing[i].CreatedAt
	s.missing[i] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteMissing(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.missing)
	s.missing = slices.DeleteFunc(s.missing, func(c models.MissingPersonCase) bool { return c.ID == id })
	if len(s.missing) == n {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listFound answers with a bare array. Some deployments of the case service do not paginate.
func (s *Server) listFound(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.found)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func decodeFound(w http.ResponseWriter, r *http.Request) (models.FoundPersonCase, bool) {
	var c models.FoundPersonCase
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return c, false
	}
	errs := required(map[string]string{
		"gender":         c.Gender,
		"found_location": c.FoundLocation,
		"finder_name":    c.FinderName,
		"finder_phone":   c.FinderPhone,
	})
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return c, false
	}
	return c, true
}

func (s *Server) createFound(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeFound(w, r)
	if !ok {
		return
	}
	now := s.now().UTC()
	s.mu.Lock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = &now
	s.found = append(s.found, c)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getFound(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.found, func(c models.FoundPersonCase) bool { return c.ID == id })
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.found[i])
}

func (s *Server) updateFound(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	c, ok := decodeFound(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.found, func(c models.FoundPersonCase) bool { return c.ID == id })
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	c.ID, c.CreatedAt = id, s.found[i].CreatedAt
	s.found[i] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteFound(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.found)
	s.found = slices.DeleteFunc(s.found, func(c models.FoundPersonCase) bool { return c.ID == id })
	if len(s.found) == n {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	status := models.MatchStatus(r.URL.Query().Get("status"))
	s.mu.Lock()
	items := make([]models.MatchSuggestion, 0, len(s.matches))
	for _, m := range s.matches {
		if status == "" || m.Status == status {
			items = append(items, m)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, items))
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.matches, func(m models.MatchSuggestion) bool { return m.ID == id })
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.matches[i])
}

func (s *Server) reviewMatch(to models.MatchStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if !models.HasRole(&user, models.RolePolice) {
			writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		id, _ := pathID(r)
		now := s.now().UTC()

		s.mu.Lock()
		defer s.mu.Unlock()
		i := slices.IndexFunc(s.matches, func(m models.MatchSuggestion) bool { return m.ID == id })
		if i < 0 {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		if s.matches[i].Finalized() {
			writeDetail(w, http.StatusBadRequest, "This match has already been reviewed.")
			return
		}
		s.matches[i].Status = to
		s.matches[i].ConfirmedBy = user.Username
		s.matches[i].ConfirmedAt = &now
		writeJSON(w, http.StatusOK, s.matches[i])
	}
}

func (s *Server) dashboardStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[string]int{}
	for _, m := range s.matches {
		byStatus[strings.ToLower(string(m.Status))]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_missing_cases": len(s.missing),
		"total_found_cases":   len(s.found),
		"total_matches":       len(s.matches),
		"matches_by_status":   byStatus,
		"active_users":        len(s.accounts),
	})
}

func (s *Server) reports(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byGender := map[string]int{}
	for _, c := range s.missing {
		byGender[strings.ToLower(c.Gender)]++
	}
	confirmed := 0
	for _, m := range s.matches {
		if m.Status == models.MatchConfirmed {
			confirmed++
		}
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "all"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":              period,
		"missing_by_gender":   byGender,
		"reunited_persons":    confirmed,
		"open_missing_cases":  len(s.missing) - confirmed,
		"pending_suggestions": len(s.matches) - confirmed,
	})
}
