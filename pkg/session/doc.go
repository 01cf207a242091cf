// Package session implements the stateless session token used by the API
// gateway: an issuance timestamp signed with HMAC-SHA-256, verified in
// constant time, and carried in an HTTP-only, SameSite=Strict cookie.
package session
