// Package issue is a minimal organization-scoped issue tracker, exposed
// through the public API under API-key authentication. The issues entity
// also appears in the role seed so member permissions cover it.
package issue
