// Package cmd implements the jobctl command tree: session management, CRUD
// for applications, interviews and skills, and the analytics views.
package cmd
