package runtimeconfig

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is matched by every NotLoadedError.
var ErrNotLoaded = errors.New("app config not loaded yet")

// LoadError reports a non-2xx answer for the configuration resource.
type LoadError struct {
	Path       string
	StatusCode int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s (%d)", e.Path, e.StatusCode)
}

// ValidationError reports a configuration document that is not a JSON object
// or lacks a required endpoint. Field is empty when the document as a whole
// is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", CanonicalPath, e.Reason)
	}
	return fmt.Sprintf("%s missing in config.json: %s", e.Field, e.Reason)
}

// NotLoadedError is returned by Store accessors called before a successful
// Resolve, or when the loaded configuration has no value for Field.
type NotLoadedError struct {
	Field string
}

func (e *NotLoadedError) Error() string {
	if e.Field == "" {
		return ErrNotLoaded.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrNotLoaded.Error(), e.Field)
}

func (e *NotLoadedError) Is(target error) bool {
	return target == ErrNotLoaded
}
