// Package opsserver serves pprof and Prometheus metrics on an address that is not exposed to users.
package opsserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangamsetu/casedesk/internal/errors"
)

// LogAddrKey is the key under which the listening address is logged.
const LogAddrKey = "ops_addr"

func Handle(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})) //nolint:exhaustruct // defaults are fine
}

// Launch serves the ops endpoints at addr until ctx is done. It returns once the listener is bound.
func Launch(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	Handle(mux, gatherer)
	srv := &http.Server{ //nolint:exhaustruct // defaults are fine
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "ops listen", slog.String("addr", addr))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "starting ops server", slog.String(LogAddrKey, listener.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx) //nolint:contextcheck // ctx is already done
	}()
	go func() {
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "ops server stopped", errors.SlogError(serveErr))
		}
	}()
	return nil
}
