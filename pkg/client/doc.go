// Package client is the Go client for the jobtracker API. It holds the
// session cookie, exposes typed calls for applications, interviews, skills
// and analytics, and can re-establish an expired session on demand.
package client
