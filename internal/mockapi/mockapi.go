package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/source-dashboard/internal/httpserver"
	"github.com/angeloszaimis/source-dashboard/internal/source"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

// Service selects which backend a router impersonates.
type Service string

const (
	Primary   Service = "primary"
	Secondary Service = "secondary"
	All       Service = "all"
)

const (
	PrimaryCount   = 10
	SecondaryCount = 4
)

// Options configures a mock backend.
type Options struct {
	Service     Service
	Environment string
	// SampleSetting is reported by /data2/env; empty reports null.
	SampleSetting string
	// ConfigDir, when set, is served under /config/.
	ConfigDir string
	Logger    *slog.Logger
}

// PrimaryRecords returns the fixed list of the primary service.
func PrimaryRecords() []source.Record {
	records := make([]source.Record, 0, PrimaryCount)
	for i := 1; i <= PrimaryCount; i++ {
		records = append(records, source.Record{
			ID:          i,
			Name:        fmt.Sprintf("Item %d", i),
			Description: fmt.Sprintf("This is the description for item %d.", i),
		})
	}
	return records
}

// SecondaryRecords returns the fixed list of the secondary service.
func SecondaryRecords(environment string) []source.Record {
	records := make([]source.Record, 0, SecondaryCount)
	for i := 1; i <= SecondaryCount; i++ {
		records = append(records, source.Record{
			ID:          i,
			Name:        fmt.Sprintf("Env : %s, Item %d", environment, i),
			Description: fmt.Sprintf("Api 2 : %d.", i),
		})
	}
	return records
}

// NewRouter returns the HTTP handler of the configured service.
func NewRouter(opts Options) (http.Handler, error) {
	switch opts.Service {
	case Primary, Secondary, All:
	default:
		return nil, fmt.Errorf("mockapi: unknown service %q", opts.Service)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpserver.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if opts.Service == Primary || opts.Service == All {
		r.Get("/data", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, PrimaryRecords())
		})
	}

	if opts.Service == Secondary || opts.Service == All {
		r.Route("/data2", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, SecondaryRecords(opts.Environment))
			})
			r.Get("/env", func(w http.ResponseWriter, _ *http.Request) {
				env := source.ServiceEnvironment{Environment: opts.Environment}
				if opts.SampleSetting != "" {
					sample := opts.SampleSetting
					env.SampleSetting = &sample
				}
				writeJSON(w, http.StatusOK, env)
			})
		})
	}

	if opts.ConfigDir != "" {
		files := http.StripPrefix("/config/", http.FileServer(http.Dir(opts.ConfigDir)))
		r.Get("/config/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			files.ServeHTTP(w, r)
		})
	}

	return r, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
