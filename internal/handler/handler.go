package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/source-dashboard/internal/dashboard"
	"github.com/angeloszaimis/source-dashboard/internal/httpserver"
	"github.com/angeloszaimis/source-dashboard/internal/metrics"
	"github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

// Options wires a Handler. Collector is optional.
type Options struct {
	Dashboard *dashboard.Dashboard
	Resolver  *runtimeconfig.Resolver
	Collector *metrics.Collector
	Logger    *slog.Logger
}

// Handler serves a mounted dashboard.
type Handler struct {
	dashboard *dashboard.Dashboard
	resolver  *runtimeconfig.Resolver
	collector *metrics.Collector
	logger    *slog.Logger
}

type reloadResponse struct {
	Config  runtimeconfig.Configuration `json:"config"`
	Started int                         `json:"started"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New validates opts and returns a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Dashboard == nil {
		return nil, errors.New("handler: dashboard required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("handler: resolver required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{
		dashboard: opts.Dashboard,
		resolver:  opts.Resolver,
		collector: opts.Collector,
		logger:    log,
	}, nil
}

// Routes returns the router of the dashboard process.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpserver.RequestLogger(h.logger))

	r.Get("/", h.page)
	r.Get("/healthz", healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.view)
		r.Post("/refresh", h.refresh)
		r.Post("/config/reload", h.reload)
	})

	if h.collector != nil {
		r.Get("/metrics", h.collector.Handler())
		r.Method(http.MethodGet, "/metrics/prometheus", h.collector.PrometheusHandler())
	}

	return r
}

func (h *Handler) page(w http.ResponseWriter, _ *http.Request) {
	render(w, h.logger, http.StatusOK, dashboardPage, newPageData(h.dashboard.View()))
}

func (h *Handler) view(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.View())
}

func (h *Handler) refresh(w http.ResponseWriter, _ *http.Request) {
	if err := h.dashboard.Refresh(); err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// reload re-resolves the runtime config and moves the loaders whose endpoint
// changed. A failed resolution keeps the previous config in place.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	cfg, err := h.resolver.Reload(r.Context())
	if err != nil {
		h.logger.Warn("Runtime config reload failed", slog.Any("err", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	if h.collector != nil {
		metrics.Emit(h.collector.EventChannel(), metrics.MetricEvent{
			Type:      metrics.EventConfigResolved,
			Timestamp: time.Now(),
			Duration:  time.Since(start),
		})
	}

	started, err := h.dashboard.Apply()
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	h.logger.Info("Runtime config reloaded", slog.Int("restarted", started))
	writeJSON(w, http.StatusOK, reloadResponse{Config: cfg, Started: started})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
