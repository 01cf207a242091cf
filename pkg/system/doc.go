// Package system holds process-wide logging helpers: logger construction and
// the request-scoped logger and request ID carried on each gin context.
package system
