// Package httpx contains the HTTP response conventions shared by all
// modules: a uniform JSON envelope, error classification into status codes,
// and redirect helpers that preserve the originally requested URL.
package httpx
