package navigation

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"
)

type contextKey string

const pendingContextKey = contextKey("pendingNavigation")

// Pending collects the navigations requested while a single HTTP request is handled.
type Pending struct {
	mu        sync.Mutex
	immediate string
	scheduled *Scheduled
}

func (p *Pending) Navigate(_ context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.immediate = path
}

func (p *Pending) NavigateAfter(_ context.Context, delay time.Duration, path string) *Scheduled {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduled != nil {
		p.scheduled.Cancel()
	}
	p.scheduled = newScheduled(delay, path)
	return p.scheduled
}

// Redirect returns the path of the immediate navigation, if one was requested.
func (p *Pending) Redirect() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.immediate, p.immediate != ""
}

// Scheduled returns the delayed navigation unless it has been cancelled.
func (p *Pending) Scheduled() (*Scheduled, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduled == nil || p.scheduled.Cancelled() {
		return nil, false
	}
	return p.scheduled, true
}

func (p *Pending) requested() bool {
	_, redirect := p.Redirect()
	_, scheduled := p.Scheduled()
	return redirect || scheduled
}

// WithPending stores p in ctx.
func WithPending(ctx context.Context, p *Pending) context.Context {
	return context.WithValue(ctx, pendingContextKey, p)
}

// FromContext returns the Pending of the request, or nil outside of [Middleware].
func FromContext(ctx context.Context) *Pending {
	p, _ := ctx.Value(pendingContextKey).(*Pending)
	return p
}

// ContextNavigator navigates with the Pending stored in the context of each call.
// Calls outside of [Middleware] are ignored.
type ContextNavigator struct{}

func (ContextNavigator) Navigate(ctx context.Context, path string) {
	if p := FromContext(ctx); p != nil {
		p.Navigate(ctx, path)
	}
}

func (ContextNavigator) NavigateAfter(ctx context.Context, delay time.Duration, path string) *Scheduled {
	if p := FromContext(ctx); p != nil {
		return p.NavigateAfter(ctx, delay, path)
	}
	s := newScheduled(delay, path)
	s.Cancel()
	return s
}

// RedirectFunc writes an immediate navigation to path.
type RedirectFunc func(w http.ResponseWriter, r *http.Request, path string)

// SeeOther redirects with 303 See Other.
func SeeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// Middleware attaches a Pending to every request. When the handler requests an immediate navigation,
// the response it renders is discarded and redirect is written instead. A delayed navigation is sent
// as a Refresh header.
func Middleware(redirect RedirectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pending := &Pending{} //nolint:exhaustruct // nothing requested yet
			r = r.WithContext(WithPending(r.Context(), pending))
			pw := &preemptingWriter{
				ResponseWriter: w,
				r:              r,
				pending:        pending,
				redirect:       redirect,
				wroteHeader:    false,
				preempted:      false,
			}
			next.ServeHTTP(pw, r)
			if !pw.wroteHeader && pending.requested() {
				pw.WriteHeader(http.StatusOK)
			}
		})
	}
}

type preemptingWriter struct {
	http.ResponseWriter
	r           *http.Request
	pending     *Pending
	redirect    RedirectFunc
	wroteHeader bool
	preempted   bool
}

func (w *preemptingWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if path, ok := w.pending.Redirect(); ok {
		w.preempted = true
		w.redirect(w.ResponseWriter, w.r, path)
		return
	}
	if s, ok := w.pending.Scheduled(); ok && s.fire() {
		seconds := int(math.Ceil(s.Delay.Seconds()))
		w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", seconds, s.Path))
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *preemptingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.preempted {
		return len(b), nil
	}
	n, err := w.ResponseWriter.Write(b)
	return n, err //nolint:wrapcheck // transparent writer
}

func (w *preemptingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
