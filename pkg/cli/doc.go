// Package cli defines the server binary's command-line flags. Each flag falls
// back to an environment variable so the server can be configured either way.
package cli
