package runtimeconfig

import (
	"strings"
	"sync/atomic"
)

// JSON keys of the configuration document.
const (
	KeyPrimary     = "API_BASE_URL"
	KeySecondary   = "API2_BASE_URL"
	KeyEnvironment = "VITE_ENV"
)

// Configuration is one resolved configuration document. Values are kept as
// served; use Normalized or the Store accessors for trimmed endpoints.
type Configuration struct {
	PrimaryEndpoint   string `json:"API_BASE_URL"`
	SecondaryEndpoint string `json:"API2_BASE_URL"`
	EnvironmentLabel  string `json:"VITE_ENV,omitempty"`
}

// Normalized returns a copy with one trailing slash removed from each endpoint.
func (c Configuration) Normalized() Configuration {
	c.PrimaryEndpoint = trimEndpoint(c.PrimaryEndpoint)
	c.SecondaryEndpoint = trimEndpoint(c.SecondaryEndpoint)
	return c
}

func trimEndpoint(v string) string {
	return strings.TrimSuffix(v, "/")
}

// Store holds the most recent successfully resolved Configuration.
// Each published Configuration is immutable; a later resolution replaces it
// as a whole. Store is safe for concurrent use.
type Store struct {
	current atomic.Pointer[Configuration]
	version atomic.Uint64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) publish(cfg Configuration) {
	s.current.Store(&cfg)
	s.version.Add(1)
}

// Loaded reports whether a resolution has succeeded.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Version increases every time a resolution is published. Zero means unset.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// PrimaryEndpoint returns API_BASE_URL without its trailing slash.
func (s *Store) PrimaryEndpoint() (string, error) {
	cfg := s.current.Load()
	if cfg == nil || cfg.PrimaryEndpoint == "" {
		return "", &NotLoadedError{Field: KeyPrimary}
	}
	return trimEndpoint(cfg.PrimaryEndpoint), nil
}

// SecondaryEndpoint returns API2_BASE_URL without its trailing slash.
func (s *Store) SecondaryEndpoint() (string, error) {
	cfg := s.current.Load()
	if cfg == nil || cfg.SecondaryEndpoint == "" {
		return "", &NotLoadedError{Field: KeySecondary}
	}
	return trimEndpoint(cfg.SecondaryEndpoint), nil
}

// EnvironmentLabel returns VITE_ENV.
func (s *Store) EnvironmentLabel() (string, error) {
	cfg := s.current.Load()
	if cfg == nil || cfg.EnvironmentLabel == "" {
		return "", &NotLoadedError{Field: KeyEnvironment}
	}
	return cfg.EnvironmentLabel, nil
}

// Snapshot returns the normalized configuration.
func (s *Store) Snapshot() (Configuration, error) {
	cfg := s.current.Load()
	if cfg == nil {
		return Configuration{}, &NotLoadedError{}
	}
	return cfg.Normalized(), nil
}
