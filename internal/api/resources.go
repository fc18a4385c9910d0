package api

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
)

// Auth talks to the token service and the accounts endpoints.
type Auth struct {
	c *Client
}

func (c *Client) Auth() Auth {
	return Auth{c: c}
}

// ObtainToken exchanges credentials for a token pair. The call is made without the session credential.
func (a Auth) ObtainToken(ctx context.Context, username, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := a.c.Post(WithCredentials(ctx, ""), "/token/", body, &pair); err != nil {
		return pair, errors.Wrap(err, "obtain token", slog.String("username", username))
	}
	if pair.Access == "" {
		return pair, errors.New("token response without access token", slog.String("username", username))
	}
	return pair, nil
}

// Profile fetches the user that owns the credential of ctx. Use [WithCredentials] to fetch the profile
// of a token that is not stored in the session yet.
func (a Auth) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	if err := a.c.Get(ctx, "/accounts/profile/", nil, &user); err != nil {
		return user, errors.Wrap(err, "fetch profile")
	}
	return user, nil
}

// Cases is the CRUD resource for one kind of case.
type Cases[T any] struct {
	c    *Client
	path string
}

func (c *Client) MissingCases() Cases[models.MissingPersonCase] {
	return Cases[models.MissingPersonCase]{c: c, path: "/cases/missing/"}
}

func (c *Client) FoundCases() Cases[models.FoundPersonCase] {
	return Cases[models.FoundPersonCase]{c: c, path: "/cases/found/"}
}

func (r Cases[T]) itemPath(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}

func (r Cases[T]) Create(ctx context.Context, in T) (T, error) {
	var out T
	if err := r.c.Post(ctx, r.path, in, &out); err != nil {
		return out, errors.Wrap(err, "create case", slog.String("path", r.path))
	}
	return out, nil
}

func (r Cases[T]) List(ctx context.Context, query url.Values) (models.Page[T], error) {
	var page models.Page[T]
	if err := r.c.Get(ctx, r.path, query, &page); err != nil {
		return page, errors.Wrap(err, "list cases", slog.String("path", r.path))
	}
	return page, nil
}

func (r Cases[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if err := r.c.Get(ctx, r.itemPath(id), nil, &out); err != nil {
		return out, errors.Wrap(err, "get case", slog.String("path", r.path), slog.Int64("id", id))
	}
	return out, nil
}

func (r Cases[T]) Update(ctx context.Context, id int64, in T) (T, error) {
	var out T
	if err := r.c.Put(ctx, r.itemPath(id), in, &out); err != nil {
		return out, errors.Wrap(err, "update case", slog.String("path", r.path), slog.Int64("id", id))
	}
	return out, nil
}

func (r Cases[T]) Delete(ctx context.Context, id int64) error {
	if err := r.c.Delete(ctx, r.itemPath(id), nil); err != nil {
		return errors.Wrap(err, "delete case", slog.String("path", r.path), slog.Int64("id", id))
	}
	return nil
}

// Matches reads and transitions match suggestions.
type Matches struct {
	c *Client
}

func (c *Client) Matches() Matches {
	return Matches{c: c}
}

const matchesPath = "/cases/matches/"

func matchPath(id int64, action string) string {
	p := matchesPath + strconv.FormatInt(id, 10) + "/"
	if action != "" {
		p += action + "/"
	}
	return p
}

// List returns the suggestions with the status of filter. [models.FilterAll] sends no status.
func (m Matches) List(ctx context.Context, filter models.MatchFilter) (models.Page[models.MatchSuggestion], error) {
	var (
		page  models.Page[models.MatchSuggestion]
		query url.Values
	)
	if filter != models.FilterAll && filter != "" {
		query = url.Values{"status": {string(filter)}}
	}
	if err := m.c.Get(ctx, matchesPath, query, &page); err != nil {
		return page, errors.Wrap(err, "list matches", slog.String("filter", string(filter)))
	}
	return page, nil
}

func (m Matches) Get(ctx context.Context, id int64) (models.MatchSuggestion, error) {
	var match models.MatchSuggestion
	if err := m.c.Get(ctx, matchPath(id, ""), nil, &match); err != nil {
		return match, errors.Wrap(err, "get match", slog.Int64("match_id", id))
	}
	return match, nil
}

func (m Matches) Confirm(ctx context.Context, id int64) error {
	if err := m.c.Post(ctx, matchPath(id, "confirm"), nil, nil); err != nil {
		return errors.Wrap(err, "confirm match", slog.Int64("match_id", id))
	}
	return nil
}

func (m Matches) Reject(ctx context.Context, id int64) error {
	if err := m.c.Post(ctx, matchPath(id, "reject"), nil, nil); err != nil {
		return errors.Wrap(err, "reject match", slog.Int64("match_id", id))
	}
	return nil
}

// Stats reads the administrative statistics.
type Stats struct {
	c *Client
}

func (c *Client) Stats() Stats {
	return Stats{c: c}
}

func (s Stats) Dashboard(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := s.c.Get(ctx, "/stats/dashboard/", nil, &stats); err != nil {
		return nil, errors.Wrap(err, "fetch dashboard stats")
	}
	return stats, nil
}

func (s Stats) Reports(ctx context.Context, query url.Values) (models.Stats, error) {
	var stats models.Stats
	if err := s.c.Get(ctx, "/stats/reports/", query, &stats); err != nil {
		return nil, errors.Wrap(err, "fetch reports")
	}
	return stats, nil
}
