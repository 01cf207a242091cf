// Package api implements the HTTP gateway: the gin engine with request IDs,
// request logging, panic recovery and CORS, the login and logout routes,
// controller registration behind the rate limiter and session gate, the
// health check and the dashboard fallback.
package api
