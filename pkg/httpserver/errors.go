package httpserver

import "errors"

var (
	ErrServerFailed   = errors.New("httpserver: server failed")
	ErrShutdownFailed = errors.New("httpserver: graceful shutdown failed")
)
