// Package httpserver runs the HTTP listener with graceful shutdown and
// provides the health endpoint handlers. The composition root hands it a
// router and a context; cancellation or SIGTERM drains in-flight requests
// before the process exits.
package httpserver
