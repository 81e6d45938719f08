package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/launchkit/pkg/logger"
)

// Healthcheck aggregates dependency probes into one handler. With no
// probes it is a liveness endpoint; with probes it answers readiness, 503
// as soon as any dependency fails.
func Healthcheck(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness probe failed", logger.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
