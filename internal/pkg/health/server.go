package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultReadHeaderTimeout = 5 * time.Second

// Run starts the health HTTP server and shuts it down when ctx is
// cancelled. Endpoints: /ping, /health (JSON run status), /metrics
// (prometheus).
func Run(ctx context.Context, addr string, status *Status, readHeaderTimeout time.Duration) {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "pong")
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		report := status.Snapshot()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if !report.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			slog.Error("Failed to encode health report", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Health server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Health server error", "error", err)
		}
	}()
}

func AddrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}
