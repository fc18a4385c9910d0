// Package api is the single gateway to the case service. Every call carries the bearer token of the
// current session and every failed response is normalised into an [*Error].
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sangamsetu/casedesk/internal/errors"
)

// TokenSource returns the access token of the current session, or "" when there is none.
// It is called for every request so that a fresh login or logout takes effect immediately.
type TokenSource func(ctx context.Context) string

// UnauthorizedHandler is called when the case service rejects the session credential. It is expected
// to clear the session and navigate to the login screen.
type UnauthorizedHandler func(ctx context.Context)

type Config struct {
	// BaseURL is the root of the case service, e.g. http://localhost:8000/api.
	BaseURL        string
	Timeout        time.Duration
	Tokens         TokenSource
	OnUnauthorized UnauthorizedHandler
	Logger         *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
	// Transport is optional and defaults to [http.DefaultTransport].
	Transport http.RoundTripper
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	logger         *slog.Logger
	metrics        *Metrics
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url", slog.String("base_url", cfg.BaseURL))
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("base url must be http or https", slog.String("base_url", cfg.BaseURL))
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = func(context.Context) string { return "" }
	}
	onUnauthorized := cfg.OnUnauthorized
	if onUnauthorized == nil {
		onUnauthorized = func(context.Context) {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimSuffix(base.String(), "/"),
		httpClient: &http.Client{ //nolint:exhaustruct // defaults are fine
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
		logger:         logger,
		metrics:        cfg.Metrics,
	}, nil
}

type contextKey string

const credentialsContextKey = contextKey("credentials")

// WithCredentials makes the calls made with ctx use token instead of the session token. An empty token
// sends no Authorization header. A 401 on such a call is returned to the caller without clearing the
// session, as the session credential was not the one rejected.
func WithCredentials(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialsContextKey, token)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var (
		err     error
		req     *http.Request
		resp    *http.Response
		reader  io.Reader
		target  = c.baseURL + path
		attrs   = []slog.Attr{slog.String("method", method), slog.String("path", path)}
		started = time.Now()
	)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	if body != nil {
		var b []byte
		if b, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "encode request body", attrs...)
		}
		reader = bytes.NewReader(b)
	}
	if req, err = http.NewRequestWithContext(ctx, method, target, reader); err != nil {
		return errors.Wrap(err, "new request", attrs...)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, explicit := ctx.Value(credentialsContextKey).(string)
	if !explicit {
		token = c.tokens(ctx)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if resp, err = c.httpClient.Do(req); err != nil {
		c.metrics.observe(method, path, 0, time.Since(started))
		return errors.Wrap(err, "send request", attrs...)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.observe(method, path, resp.StatusCode, time.Since(started))

	var respBody []byte
	if respBody, err = io.ReadAll(resp.Body); err != nil {
		return errors.Wrap(err, "read response body", attrs...)
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "case service responded",
		append(attrs, slog.Int("status", resp.StatusCode))...)

	if err = c.normalize(ctx, method, path, resp.StatusCode, respBody, !explicit); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "decode response body", append(attrs, slog.Int("status", resp.StatusCode))...)
	}
	return nil
}

// normalize turns a non-2xx response into an *Error. A 401 on a call made with the session
// credential clears the session through the unauthorized handler first.
func (c *Client) normalize(ctx context.Context, method, path string, status int, body []byte, sessionCredential bool) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}
	apiErr := newError(method, path, status, body)
	switch status {
	case http.StatusUnauthorized:
		if sessionCredential {
			c.logger.LogAttrs(ctx, slog.LevelInfo, "session expired",
				slog.String("method", method), slog.String("path", path))
			c.onUnauthorized(ctx)
		}
		apiErr.kind = ErrSessionExpired
	case http.StatusForbidden:
		c.logger.LogAttrs(ctx, slog.LevelWarn, "access denied",
			slog.String("method", method), slog.String("path", path), slog.String("detail", apiErr.Detail))
		apiErr.kind = ErrForbidden
	}
	return apiErr
}
