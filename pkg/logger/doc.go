// Package logger provides structured logging for the dashboard process.
// It wraps the standard log/slog package: human-readable text output outside
// production and JSON output in production, with the deployment environment
// attached to every record.
package logger
