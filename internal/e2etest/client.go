package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sangamsetu/casedesk/internal/errors"
)

type Client struct {
	client *http.Client
	jar    *browserJar
	url    string
}

// NewClient creates an HTTP client with a cookie jar that keeps the session and CSRF cookies.
func NewClient(url string) (*Client, error) {
	jar, err := newBrowserJar()
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // default transport and redirects
		jar:    jar,
		url:    url,
	}, nil
}

// HasCookie reports whether the client holds a cookie called name for the server.
func (c *Client) HasCookie(name string) bool {
	u, err := neturl.Parse(c.url)
	if err != nil {
		return false
	}
	return c.jar.hasCookie(u, name)
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	return readDoc(resp, http.StatusOK)
}

// WithoutRedirects returns a copy of the client that shares the cookie jar but returns redirect responses
// instead of following them.
func (c *Client) WithoutRedirects() *Client {
	inner := *c.client
	inner.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{client: &inner, jar: c.jar, url: c.url}
}

func readDoc(resp *http.Response, wantStatus int) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if wantStatus != resp.StatusCode {
		return nil, errors.New("unexpected status code",
			slog.Int("status", resp.StatusCode), slog.String("url", resp.Request.URL.String()))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

// Login submits the login form and returns the page the server lands on.
func (c *Client) Login(ctx context.Context, username, password string) (*goquery.Document, error) {
	doc, err := c.SubmitForm(ctx, "/login", "/login", neturl.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return nil, errors.Wrap(err, "submit login form", slog.String("username", username))
	}
	return doc, nil
}

// Logout submits the logout form in the navigation bar of the dashboard.
func (c *Client) Logout(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.SubmitForm(ctx, "/dashboard", "/logout", nil)
	if err != nil {
		return nil, errors.Wrap(err, "submit form")
	}
	return doc, nil
}

// ExtractCSRFToken finds the CSRF token of the form with action formActionURLPath.
func ExtractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	if form.Length() == 0 {
		return "", errors.New("form not found", slog.String("selector", formSelector))
	}
	csrfToken, ok := form.First().Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("selector", formSelector))
	}
	return csrfToken, nil
}

// PostForm loads the page at formURLPath, copies the CSRF token of the form with action formActionURLPath,
// and posts values to the form action. header is added to the request. The response is returned as is.
func (c *Client) PostForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
	header http.Header,
) (*http.Response, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, formURLPath); err != nil {
		return nil, errors.Wrap(err, "get document")
	}

	var csrfToken string
	if csrfToken, err = ExtractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	formData := neturl.Values{}
	for k, v := range values {
		formData[k] = v
	}
	formData.Set("csrf_token", csrfToken)
	return c.Post(ctx, formActionURLPath, formData, header)
}

// Post posts the url-encoded values to urlPath. header is added to the request.
func (c *Client) Post(ctx context.Context, urlPath string, values neturl.Values, header http.Header) (*http.Response, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodPost, urlPath, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// SubmitForm submits a form at formUrlPath with action formActionUrlPath and returns the response document.
// The response must be 200 OK after following redirects.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, error) {
	resp, err := c.PostForm(ctx, formURLPath, formActionURLPath, values, nil)
	if err != nil {
		return nil, err
	}
	return readDoc(resp, http.StatusOK)
}
