// Package httpserver wraps net/http with address validation, graceful
// shutdown and the request logging middleware shared by every router.
package httpserver
