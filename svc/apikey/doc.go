// Package apikey issues and resolves API keys for the public API. Keys are
// random 64-char hex strings stored as SHA-256 hashes; only the last four
// characters are kept in the clear for display. A key resolves to the
// organization it was created under.
package apikey
