package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/source-dashboard/internal/httpserver"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

// Failure returns the router served when the runtime config could not be
// resolved at startup. Every route answers 503 with the resolution error.
func Failure(cause error, log *slog.Logger) http.Handler {
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpserver.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Runtime config load failed: " + cause.Error()))
	})

	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render(w, log, http.StatusServiceUnavailable, failurePage, cause.Error())
	}))

	return r
}
