// Package tracker exposes the job-application tracker over HTTP: CRUD for
// applications, interview rounds and skill tags, and the dashboard
// analytics. Controllers plug into the API server and rely on it for the
// session gate and rate limiting.
package tracker
