// Package apiresponses provides the structured JSON error bodies shared by
// the gateway, the session gate, the rate limiter and the tracker
// controllers, so every failure has the same shape.
package apiresponses
