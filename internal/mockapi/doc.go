// Package mockapi implements the stub backends the dashboard reads from.
//
// The primary service answers GET /data with ten fixed records. The
// secondary service answers GET /data2 with four records labelled with its
// environment and GET /data2/env with a small diagnostic document. Both are
// stateless. When a config directory is given, the files in it are also
// served under /config/ so one process can stand in for the dashboard's
// configuration host during development.
package mockapi
