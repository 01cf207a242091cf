// Package store persists job applications, interview rounds and skill tags
// in SQLite and answers the dashboard's analytics queries. The schema is
// applied from embedded, versioned migrations when the store is opened.
package store
