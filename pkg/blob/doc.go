// Package blob stores user-uploaded binary objects (avatars) in S3 or any
// S3-compatible service. Objects are private; reads go through short-lived
// presigned URLs that callers are expected to cache.
package blob
