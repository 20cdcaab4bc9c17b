// Package config loads the process settings of the dashboard from a YAML file
// and environment variables: listen address, environment, log level, the
// origin serving the runtime config and the metrics buffer size.
package config
