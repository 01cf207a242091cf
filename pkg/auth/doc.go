// Package auth implements the session gate placed in front of every
// protected API route, plus the login and logout handlers that issue and
// clear the session cookie.
//
// The gate is stateless: a request passes when its path is public or its
// session cookie verifies against the current secret. Everything else is
// challenged with a 401, and a cookie that failed verification is cleared.
package auth
