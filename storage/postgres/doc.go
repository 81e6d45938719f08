// Package postgres implements every service storage interface on top of a
// pgx connection pool. Driver errors never cross the package boundary:
// each method maps them to the owning service's sentinels.
package postgres
