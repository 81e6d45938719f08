// Package pg owns PostgreSQL connectivity: pool construction with startup
// retries, goose schema migrations, and error classification helpers used
// by the storage layer to translate driver errors into domain errors.
package pg
