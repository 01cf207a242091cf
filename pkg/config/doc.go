// Package config loads the server configuration once at startup from an
// optional YAML file and the environment. The loaded value is immutable and
// passed explicitly to the components that need it.
package config
