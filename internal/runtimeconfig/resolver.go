package runtimeconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

// Well-known locations of the configuration resource, relative to the base URL.
const (
	OverridePath  = "/config/config.local.json"
	CanonicalPath = "/config/config.json"
)

// Options configures a Resolver.
type Options struct {
	// BaseURL is the origin serving the /config resources.
	BaseURL string
	// Client defaults to a client without a timeout.
	Client *http.Client
	Logger *slog.Logger
	// Store receives every successful resolution. Required.
	Store *Store
	// DevOverride enables the config.local.json lookup. Callers pass DevMode.
	DevOverride bool
	// DefaultEnvironment fills VITE_ENV when the document omits it.
	DefaultEnvironment string
}

// Resolver fetches the configuration resource and publishes it into a Store.
type Resolver struct {
	baseURL            *url.URL
	client             *http.Client
	logger             *slog.Logger
	store              *Store
	devOverride        bool
	defaultEnvironment string
}

// NewResolver validates opts and returns a Resolver.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.Store == nil {
		return nil, errors.New("runtimeconfig: store required")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("runtimeconfig: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("runtimeconfig: base url %q must use http or https", opts.BaseURL)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Resolver{
		baseURL:            base,
		client:             client,
		logger:             log,
		store:              opts.Store,
		devOverride:        opts.DevOverride,
		defaultEnvironment: opts.DefaultEnvironment,
	}, nil
}

// Store returns the Store the resolver publishes into.
func (r *Resolver) Store() *Store {
	return r.store
}

// Resolve loads the configuration, publishes it and returns it normalized.
// On error the Store keeps whatever it held before.
func (r *Resolver) Resolve(ctx context.Context) (Configuration, error) {
	cfg, path, err := r.load(ctx)
	if err != nil {
		return Configuration{}, err
	}

	r.publish(cfg, path)
	return cfg.Normalized(), nil
}

// Reload resolves like Resolve but publishes only a configuration holding
// both endpoints, so a broken override never replaces a working one.
func (r *Resolver) Reload(ctx context.Context) (Configuration, error) {
	cfg, path, err := r.load(ctx)
	if err != nil {
		return Configuration{}, err
	}

	if err := requireEndpoints(cfg); err != nil {
		r.logger.Warn("Rejected incomplete runtime config",
			slog.String("path", path),
			slog.Any("err", err))
		return Configuration{}, err
	}

	r.publish(cfg, path)
	return cfg.Normalized(), nil
}

// load returns the configuration and the path it came from without
// publishing it.
func (r *Resolver) load(ctx context.Context) (Configuration, string, error) {
	if r.devOverride {
		if cfg, ok := r.resolveOverride(ctx); ok {
			return cfg, OverridePath, nil
		}
	}

	doc, err := r.fetchDocument(ctx, CanonicalPath)
	if err != nil {
		return Configuration{}, "", err
	}

	if err := validateDocument(doc); err != nil {
		return Configuration{}, "", err
	}

	return r.withDefaults(fromDocument(doc)), CanonicalPath, nil
}

func (r *Resolver) publish(cfg Configuration, path string) {
	r.store.publish(cfg)

	r.logger.Info("Runtime config loaded",
		slog.String("path", path),
		slog.String("env", cfg.EnvironmentLabel),
		slog.String("api", cfg.PrimaryEndpoint),
		slog.String("api2", cfg.SecondaryEndpoint))
}

// resolveOverride returns the local override when it answers 2xx with a JSON
// object. Its contents are not validated.
func (r *Resolver) resolveOverride(ctx context.Context) (Configuration, bool) {
	doc, err := r.fetchDocument(ctx, OverridePath)
	if err != nil {
		r.logger.Debug("Local config override unavailable",
			slog.String("path", OverridePath),
			slog.Any("err", err))
		return Configuration{}, false
	}

	return r.withDefaults(fromDocument(doc)), true
}

func (r *Resolver) withDefaults(cfg Configuration) Configuration {
	if cfg.EnvironmentLabel == "" {
		cfg.EnvironmentLabel = r.defaultEnvironment
	}
	return cfg
}

func (r *Resolver) fetchDocument(ctx context.Context, path string) (map[string]any, error) {
	target := r.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &LoadError{Path: path, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("decode %s: %v", path, err)}
	}
	if doc == nil {
		return nil, &ValidationError{Reason: "document must be a JSON object"}
	}

	return doc, nil
}
