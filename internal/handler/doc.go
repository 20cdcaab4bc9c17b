// Package handler serves the dashboard over HTTP: the rendered page, the JSON
// view model, runtime config reloads and the metrics endpoints.
package handler
