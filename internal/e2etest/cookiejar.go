package e2etest

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/sangamsetu/casedesk/internal/errors"
	"golang.org/x/net/publicsuffix"
)

// browserJar keeps cookies the way a browser does, except that Secure cookies set by a plain-HTTP test
// server are kept and sent back. The session and CSRF cookies are Secure by default.
type browserJar struct {
	jar *cookiejar.Jar
}

func newBrowserJar() (*browserJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return &browserJar{jar: jar}, nil
}

func (b *browserJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u.Scheme == "http" {
		for _, cookie := range cookies {
			cookie.Secure = false
		}
	}
	b.jar.SetCookies(u, cookies)
}

func (b *browserJar) Cookies(u *url.URL) []*http.Cookie {
	return b.jar.Cookies(u)
}

// hasCookie reports whether the jar holds a cookie called name for u.
func (b *browserJar) hasCookie(u *url.URL, name string) bool {
	for _, c := range b.jar.Cookies(u) {
		if c.Name == name {
			return true
		}
	}
	return false
}
