// Package testhelpers holds small helpers shared by the tests and the test commands.
package testhelpers

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sangamsetu/casedesk/internal/logging"
)

// NewLogger creates a debug level logger writing to logSink, such as io.Discard or a [bytes.Buffer].
// Attributes stored with [logging.WithAttrs] are included.
func NewLogger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
}

// NewTestLogger creates a logger whose records show up in the output of t, only for failing or verbose tests.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return NewLogger(&testWriter{t: t}) //nolint:exhaustruct // zero buffer
}

// testWriter sends complete lines to t.Log.
type testWriter struct {
	t   testing.TB
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.t.Log(line[:len(line)-1])
	}
}
