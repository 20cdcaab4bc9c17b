package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/source-dashboard/config"
	"github.com/angeloszaimis/source-dashboard/internal/dashboard"
	"github.com/angeloszaimis/source-dashboard/internal/handler"
	"github.com/angeloszaimis/source-dashboard/internal/metrics"
	"github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"
)

// app is what the serve command puts behind the HTTP server.
type app struct {
	routes    http.Handler
	dashboard *dashboard.Dashboard
	// failure is the startup resolution error; routes then only report it.
	failure error
}

func (a *app) close() {
	if a.dashboard == nil {
		return
	}
	a.dashboard.Close()
	a.dashboard.Wait()
}

func newResolver(cfg *config.Config, log *slog.Logger) (*runtimeconfig.Resolver, error) {
	return runtimeconfig.NewResolver(runtimeconfig.Options{
		BaseURL:            cfg.RuntimeConfig.BaseURL,
		Logger:             log,
		Store:              runtimeconfig.NewStore(),
		DevOverride:        runtimeconfig.DevMode,
		DefaultEnvironment: cfg.Server.Environment,
	})
}

// bootstrap resolves the runtime config before anything reads an endpoint.
// A resolution failure is not returned: the app then serves the failure page.
func bootstrap(ctx context.Context, cfg *config.Config, log *slog.Logger, collector *metrics.Collector) (*app, error) {
	resolver, err := newResolver(cfg, log)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err := resolver.Resolve(ctx); err != nil {
		log.Error("Runtime config load failed", slog.Any("err", err))
		return &app{routes: handler.Failure(err, log), failure: err}, nil
	}

	metrics.Emit(collector.EventChannel(), metrics.MetricEvent{
		Type:      metrics.EventConfigResolved,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	})

	dash, err := dashboard.New(dashboard.Options{
		Store:  resolver.Store(),
		Logger: log,
		Events: collector.EventChannel(),
	})
	if err != nil {
		return nil, err
	}

	// A dev override may hold a single endpoint. That surfaces here and is
	// served like any other resolution failure.
	if err := dash.Mount(ctx); err != nil {
		log.Error("Runtime config load failed", slog.Any("err", err))
		return &app{routes: handler.Failure(err, log), failure: err}, nil
	}

	h, err := handler.New(handler.Options{
		Dashboard: dash,
		Resolver:  resolver,
		Collector: collector,
		Logger:    log,
	})
	if err != nil {
		dash.Close()
		return nil, err
	}

	return &app{routes: h.Routes(), dashboard: dash}, nil
}
