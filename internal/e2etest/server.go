package e2etest

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/logging"
)

const (
	// LogAddrKey is the top-level log attribute under which the web server logs its listening address.
	LogAddrKey = "addr"
	// HealthPath answers 200 once the web server is serving.
	HealthPath = "/api/healthy"
)

// RunFunc starts a server and blocks until ctx is done.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

type Server struct {
	url    string
	client *Client
}

// StartServer runs the server in the background and returns once it answers on [HealthPath].
//
// The listening address is read from the first record carrying [LogAddrKey], so run can listen on port 0.
// logSink receives the server logs, usually [io.Discard]. The server stops when ctx is cancelled.
func StartServer(
	ctx context.Context,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run RunFunc,
) (*Server, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	addrCh := make(chan string, 1)
	var once sync.Once
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == LogAddrKey {
				once.Do(func() { addrCh <- a.Value.String() })
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr string
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(context.Cause(ctx), "server stopped before listening")
	case addr = <-addrCh:
	}

	serverURL := "http://" + addr
	client, err := NewClient(serverURL)
	if err != nil {
		cancel(err)
		return nil, errors.Wrap(err, "new client")
	}
	if err = client.WaitForReady(ctx, HealthPath); err != nil {
		cancel(err)
		return nil, errors.Wrap(err, "wait for ready", slog.String("url", serverURL))
	}
	return &Server{url: serverURL, client: client}, nil
}

// Client is the client created while waiting for the server. Its cookie jar is shared by all callers.
func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}
