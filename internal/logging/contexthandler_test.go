package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/sangamsetu/casedesk/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("request_id", "abc"))
	ctx = logging.WithAttrs(ctx, slog.String("username", "officer"))
	logger.InfoContext(ctx, "confirmed match")

	out := buf.String()
	require.Contains(t, out, "request_id=abc")
	require.Contains(t, out, "username=officer")
}

func TestWithAttrsDoesNotLeakBetweenSiblings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	left := logging.WithAttrs(parent, slog.String("b", "2"))
	_ = logging.WithAttrs(parent, slog.String("c", "3"))

	logger.InfoContext(left, "left")
	require.Contains(t, buf.String(), "b=2")
	require.NotContains(t, buf.String(), "c=3")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "info", want: slog.LevelInfo},
		{name: "WARN", want: slog.LevelWarn},
		{name: " error ", want: slog.LevelError},
		{name: "nonsense", want: slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, logging.ParseLevel(tt.name))
		})
	}
}
