// Package runtimeconfig resolves the deployment configuration of the
// dashboard at startup instead of at build time.
//
// The configuration is a small JSON document served from a well-known path
// next to the dashboard:
//
//	{
//	  "API_BASE_URL":  "https://primary.example.com/",
//	  "API2_BASE_URL": "https://secondary.example.com",
//	  "VITE_ENV":      "test"
//	}
//
// Builds tagged devconfig first try /config/config.local.json and use it
// verbatim when it answers 2xx. Every other build, and every failed override,
// reads /config/config.json, which must carry both endpoint keys as non-empty
// strings.
//
// A successful Resolve publishes the result into a Store. The Store is the
// single source of truth for the endpoints; its accessors fail with
// ErrNotLoaded until a resolution has succeeded and strip exactly one
// trailing slash from each endpoint.
package runtimeconfig
