// Package ratelimit provides the fixed-window limiter that bounds login
// attempts and API traffic per client IP, the counter stores behind it
// (in-process memory or Redis), and a token-bucket limiter for the public
// surface (health check and dashboard assets).
//
// Fixed-window responses carry the standard RateLimit-Policy,
// RateLimit-Limit, RateLimit-Remaining and RateLimit-Reset headers; rejected
// requests also get Retry-After and a 429 body.
package ratelimit
