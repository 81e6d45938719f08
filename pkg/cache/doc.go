// Package cache provides a Redis-backed TTL cache with typed JSON values,
// plus connection bootstrap with retries. It backs short-lived derived data
// such as presigned avatar URLs and permission lookups.
package cache
