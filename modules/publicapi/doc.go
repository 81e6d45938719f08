// Package publicapi is the machine-facing JSON API. Every request carries
// an API key in the X-API-Key header; the key pins the organization scope
// and nothing outside that organization is ever addressable. Mutations are
// additionally gated on the key creator's write permission for issues in
// that organization.
package publicapi
